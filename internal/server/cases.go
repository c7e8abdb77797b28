package server

import (
	"net/http"

	"evidencechain/pkg/types"
)

type caseEvidenceQuery struct {
	Limit uint64 `form:"limit"`
}

type caseChainQuery struct {
	Rehash bool `form:"rehash"`
}

func (s *Service) handleListCaseEvidence(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")

	var query = new(caseEvidenceQuery)
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		s.writeError(w, types.NewError(types.ErrorKindMalformedRequest, "invalid query parameters", err))
		return
	}

	records, err := s.ledger.EvidenceByCase(r.Context(), caseID, query.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Service) handleGetCaseTip(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")

	tip, err := s.ledger.Tip(r.Context(), caseID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var response = types.TipResponse{CaseID: caseID}
	if tip != nil {
		response.TipHash = &tip.CurrentHash
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Service) handleAuditCaseChain(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")

	var query = new(caseChainQuery)
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		s.writeError(w, types.NewError(types.ErrorKindMalformedRequest, "invalid query parameters", err))
		return
	}

	report, err := s.auditor.Audit(r.Context(), caseID, query.Rehash)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}
