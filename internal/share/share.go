// Package share carries assessments between the self, peer-request and
// peer-validation stages inside URL query parameters.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sagearbor/ai-skill-eval-kit/internal/assessment"
	"github.com/sagearbor/ai-skill-eval-kit/internal/report"
	"github.com/sagearbor/ai-skill-eval-kit/internal/rubric"
	"github.com/sagearbor/ai-skill-eval-kit/internal/statecodec"
)

// Query parameter names.
const (
	ParamRequest = "d"
	ParamReport  = "r"
	ParamPrefill = "prefill"
)

// ErrInvalidLink is returned for any link that does not carry a usable payload.
var ErrInvalidLink = errors.New("invalid or missing assessment link")

// PeerRequest asks a colleague to validate claimed levels.
type PeerRequest struct {
	Name        string        `json:"name"`
	Role        string        `json:"role"`
	CompanyType string        `json:"companyType"`
	Email       string        `json:"email"`
	Dimensions  rubric.Levels `json:"dimensions"`
	Notes       string        `json:"notes"`
	Timestamp   string        `json:"timestamp"`
}

// NewPeerRequest checks the assessee and levels and stamps the request.
func NewPeerRequest(a assessment.Assessee, levels rubric.Levels, notes string, now time.Time) (*PeerRequest, error) {
	a = a.Normalize()
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("share.NewPeerRequest: %w", err)
	}
	if err := assessment.Check(levels); err != nil {
		return nil, fmt.Errorf("share.NewPeerRequest: %w", err)
	}
	dims := make(rubric.Levels, len(rubric.Dimensions()))
	for _, d := range rubric.Dimensions() {
		dims[d] = levels[d]
	}
	return &PeerRequest{
		Name:        a.Name,
		Role:        a.Role,
		CompanyType: a.CompanyType,
		Email:       a.Email,
		Dimensions:  dims,
		Notes:       strings.TrimSpace(notes),
		Timestamp:   now.UTC().Format(time.RFC3339),
	}, nil
}

// Assessee rebuilds the identity carried by the request.
func (p *PeerRequest) Assessee() assessment.Assessee {
	return assessment.Assessee{Name: p.Name, Email: p.Email, Role: p.Role, CompanyType: p.CompanyType}.Normalize()
}

func (p *PeerRequest) usable() bool {
	return p != nil && strings.TrimSpace(p.Name) != "" && p.Dimensions != nil
}

// Prefill hands a finished self-assessment to the peer-request form.
type Prefill struct {
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Role        string        `json:"role"`
	CompanyType string        `json:"companyType"`
	Levels      rubric.Levels `json:"levels"`
	FromL1      bool          `json:"fromL1"`
}

// PrefillFrom captures a level-1 report for the next stage.
func PrefillFrom(r *report.Report) *Prefill {
	return &Prefill{
		Name:        r.Assessee.Name,
		Email:       r.Assessee.Email,
		Role:        r.Assessee.Role,
		CompanyType: r.Assessee.CompanyType,
		Levels:      r.Levels(),
		FromL1:      r.AssessmentLevel == rubric.TierSelf,
	}
}

// Complete applies a peer's decisions to a request and builds the level-2
// report. The request itself is left untouched.
func Complete(req *PeerRequest, peer assessment.Peer, decisions map[rubric.Dimension]assessment.Decision, b *report.Builder) (*report.Report, error) {
	if !req.usable() {
		return nil, ErrInvalidLink
	}
	return b.Build(report.Request{
		Assessee: req.Assessee(),
		Levels:   req.Dimensions.Clone(),
		Tier:     rubric.TierPeer,
		Validation: &assessment.Validation{
			Peer:      peer,
			Decisions: decisions,
		},
		Notes: req.Notes,
	})
}

// Link sets param on base to the encoded payload.
func Link(base, param string, payload any) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("share.Link: %w", err)
	}
	encoded, err := statecodec.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("share.Link: %w", err)
	}
	q := u.Query()
	q.Set(param, encoded)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Kind names the payload a link carries.
type Kind string

const (
	KindRequest Kind = "peer-request"
	KindReport  Kind = "report"
	KindPrefill Kind = "prefill"
)

// Payload is the decoded content of a link. Exactly one pointer is set.
type Payload struct {
	Kind    Kind
	Request *PeerRequest
	Report  *report.Report
	Prefill *Prefill
}

// Parse decodes a link. A completed report in r wins over a request in d,
// and a malformed r falls through to d.
func Parse(rawURL string) (*Payload, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrInvalidLink
	}
	q := u.Query()

	if v := q.Get(ParamReport); v != "" {
		if r, err := DecodeReport(v); err == nil {
			return &Payload{Kind: KindReport, Report: r}, nil
		}
	}
	if v := q.Get(ParamRequest); v != "" {
		req, err := DecodeRequest(v)
		if err != nil {
			return nil, err
		}
		return &Payload{Kind: KindRequest, Request: req}, nil
	}
	if v := q.Get(ParamPrefill); v != "" {
		var p Prefill
		if !statecodec.DecodeInto(v, &p) || p.Levels == nil {
			return nil, ErrInvalidLink
		}
		return &Payload{Kind: KindPrefill, Prefill: &p}, nil
	}
	return nil, ErrInvalidLink
}

// DecodeRequest reads an encoded peer request.
func DecodeRequest(encoded string) (*PeerRequest, error) {
	var req PeerRequest
	if !statecodec.DecodeInto(encoded, &req) || !req.usable() {
		return nil, ErrInvalidLink
	}
	return &req, nil
}

// DecodeReport reads an encoded report of any supported version.
func DecodeReport(encoded string) (*report.Report, error) {
	data, ok := statecodec.Bytes(encoded)
	if !ok {
		return nil, ErrInvalidLink
	}
	r, err := report.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	return r, nil
}
