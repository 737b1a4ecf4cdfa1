package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/schema"
	"github.com/sagearbor/ai-skill-eval-kit/internal/scoring"
	"github.com/sagearbor/ai-skill-eval-kit/internal/share"
	"github.com/sagearbor/ai-skill-eval-kit/internal/statecodec"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP statuses. Anything unrecognised is
// a server error.
func statusFor(err error) int {
	var (
		incomplete *assessment.IncompleteError
		level      *assessment.LevelError
		identity   *assessment.IdentityError
		adjustment *report.AdjustmentError
		decision   *report.DecisionError
	)
	switch {
	case errors.As(err, &incomplete), errors.As(err, &level), errors.As(err, &identity),
		errors.As(err, &adjustment), errors.As(err, &decision),
		errors.Is(err, report.ErrValidationRequired), errors.Is(err, report.ErrInvalidTier):
		return http.StatusUnprocessableEntity
	case errors.Is(err, share.ErrInvalidLink):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, userMessage(err))
}

// userMessage drops the package prefixes added while wrapping.
func userMessage(err error) string {
	var (
		incomplete *assessment.IncompleteError
		adjustment *report.AdjustmentError
	)
	switch {
	case errors.As(err, &incomplete):
		return incomplete.Error()
	case errors.As(err, &adjustment):
		return adjustment.Error()
	case errors.Is(err, share.ErrInvalidLink):
		return share.ErrInvalidLink.Error()
	}
	return err.Error()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type rubricResponse struct {
	Dimensions   []rubric.Definition   `json:"dimensions"`
	Bands        []rubric.Band         `json:"bands"`
	Evidence     []rubric.EvidenceTier `json:"evidence"`
	Roles        []string              `json:"roles"`
	CompanyTypes []string              `json:"companyTypes"`
}

func (s *Server) handleRubric(w http.ResponseWriter, r *http.Request) {
	resp := rubricResponse{
		Dimensions:   rubric.Definitions(),
		Bands:        rubric.Bands(),
		Roles:        rubric.Roles(),
		CompanyTypes: rubric.CompanyTypes(),
	}
	for _, t := range []rubric.Tier{rubric.TierSelf, rubric.TierPeer, rubric.TierVerified} {
		ev, _ := rubric.Evidence(t)
		resp.Evidence = append(resp.Evidence, ev)
	}
	writeJSON(w, http.StatusOK, resp)
}

type scoreRequest struct {
	Levels          rubric.Levels `json:"levels"`
	Role            string        `json:"role"`
	CompanyType     string        `json:"companyType"`
	AssessmentLevel rubric.Tier   `json:"assessmentLevel"`
}

type scoreResponse struct {
	scoring.DualScore
	SuspectedGaming bool `json:"suspectedGaming"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := assessment.Check(req.Levels); err != nil {
		s.fail(w, err)
		return
	}
	tier := req.AssessmentLevel
	if tier == 0 {
		tier = rubric.TierSelf
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = rubric.DefaultRole
	}
	role, _ = rubric.CanonicalRole(role)
	companyType, _ := rubric.CanonicalCompanyType(req.CompanyType)

	dual := s.calculator(r.Context()).Dual(req.Levels, role, companyType, tier)
	writeJSON(w, http.StatusOK, scoreResponse{DualScore: dual, SuspectedGaming: assessment.SuspectedGaming(req.Levels)})
}

type reportResponse struct {
	Report *report.Report `json:"report"`
	Schema schema.Result  `json:"schema"`
	Link   string         `json:"link,omitempty"`
}

type buildRequest struct {
	assessment.Input
	BaseURL string `json:"baseUrl"`
}

func (s *Server) handleBuildReport(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rep, err := s.builder(r.Context()).Build(report.Request{
		Assessee:   req.Assessee,
		Levels:     req.Levels,
		Tier:       req.Tier(),
		Validation: req.Validation,
		Notes:      req.Notes,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respondReport(w, r, rep, req.BaseURL)
}

func (s *Server) respondReport(w http.ResponseWriter, r *http.Request, rep *report.Report, base string) {
	resp := reportResponse{Report: rep, Schema: s.schema.ValidateReport(r.Context(), rep)}
	if base != "" {
		link, err := share.Link(base, share.ParamReport, rep)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid baseUrl")
			return
		}
		resp.Link = link
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleValidateReport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	res, err := s.schema.ValidateDocument(r.Context(), data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type encoded struct {
	Encoded string `json:"encoded"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var v any
	if !decodeBody(w, r, &v) {
		return
	}
	e, err := statecodec.Encode(v)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encoded{Encoded: e})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req encoded
	if !decodeBody(w, r, &req) {
		return
	}
	v, ok := statecodec.Decode(req.Encoded)
	if !ok {
		writeError(w, http.StatusBadRequest, "payload could not be decoded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": v})
}

type peerRequestBody struct {
	Assessee assessment.Assessee `json:"assessee"`
	Levels   rubric.Levels       `json:"levels"`
	Notes    string              `json:"notes"`
	BaseURL  string              `json:"baseUrl"`
}

type peerRequestResponse struct {
	Request *share.PeerRequest `json:"request"`
	Encoded string             `json:"encoded"`
	Link    string             `json:"link,omitempty"`
}

func (s *Server) handlePeerRequest(w http.ResponseWriter, r *http.Request) {
	var body peerRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := share.NewPeerRequest(body.Assessee, body.Levels, body.Notes, s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	enc, err := statecodec.Encode(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	resp := peerRequestResponse{Request: req, Encoded: enc}
	if body.BaseURL != "" {
		if resp.Link, err = share.Link(body.BaseURL, share.ParamRequest, req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid baseUrl")
			return
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

type peerValidationBody struct {
	// Link is a full peer link; Encoded is its d parameter alone.
	Link      string                                   `json:"link"`
	Encoded   string                                   `json:"encoded"`
	Validator assessment.Peer                          `json:"validator"`
	Decisions map[rubric.Dimension]assessment.Decision `json:"decisions"`
	BaseURL   string                                   `json:"baseUrl"`
}

func (s *Server) handlePeerValidation(w http.ResponseWriter, r *http.Request) {
	var body peerValidationBody
	if !decodeBody(w, r, &body) {
		return
	}

	var req *share.PeerRequest
	switch {
	case body.Link != "":
		p, err := share.Parse(body.Link)
		if err != nil {
			s.fail(w, err)
			return
		}
		if p.Kind != share.KindRequest {
			s.fail(w, share.ErrInvalidLink)
			return
		}
		req = p.Request
	default:
		var err error
		if req, err = share.DecodeRequest(body.Encoded); err != nil {
			s.fail(w, err)
			return
		}
	}

	rep, err := share.Complete(req, body.Validator, body.Decisions, s.builder(r.Context()))
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respondReport(w, r, rep, body.BaseURL)
}
