package handler

import (
	"strings"

	"faucetgate/internal/disbursement/models"
	dErrors "faucetgate/pkg/domain-errors"
)

const (
	maxAgentNameLen = 128
	maxReasonLen    = 1000
	maxProofURLLen  = 2048
	maxAddressLen   = 128
)

// DisbursementRequest is the body for POST /v1/disbursements and the
// legacy POST /request route.
type DisbursementRequest struct {
	AgentName     string `json:"agent_name"`
	WalletAddress string `json:"wallet_address"`
	Reason        string `json:"reason"`
	ProofURL      string `json:"proof_url"`
	// MoltbookProof is the legacy name for ProofURL.
	MoltbookProof string `json:"moltbook_proof,omitempty"`
}

func (r *DisbursementRequest) Normalize() {
	r.AgentName = strings.TrimSpace(r.AgentName)
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
	r.Reason = strings.TrimSpace(r.Reason)
	r.ProofURL = strings.TrimSpace(r.ProofURL)
	if r.ProofURL == "" {
		r.ProofURL = strings.TrimSpace(r.MoltbookProof)
	}
}

// Validate only bounds sizes. Required fields are checked by the service so
// every entry point reports them the same way.
func (r *DisbursementRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	switch {
	case len(r.AgentName) > maxAgentNameLen:
		return dErrors.New(dErrors.CodeValidation, "agent_name is too long")
	case len(r.WalletAddress) > maxAddressLen:
		return dErrors.New(dErrors.CodeValidation, "wallet_address is too long")
	case len(r.Reason) > maxReasonLen:
		return dErrors.New(dErrors.CodeValidation, "reason is too long")
	case len(r.ProofURL) > maxProofURLLen:
		return dErrors.New(dErrors.CodeValidation, "proof_url is too long")
	}
	return nil
}

func (r *DisbursementRequest) toModel() models.Request {
	return models.Request{
		Identity:      r.AgentName,
		Destination:   r.WalletAddress,
		Justification: r.Reason,
		ProofURL:      r.ProofURL,
	}
}
