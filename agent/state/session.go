package state

import (
	"errors"
	"fmt"
	"time"
)

// Stage is the current phase of a loan application workflow. Exactly one
// stage is active per session; Approved and Rejected are terminal for the
// automated flow (only an explicit reset leaves them).
type Stage string

const (
	StageInitial      Stage = "initial"
	StageSales        Stage = "sales"
	StageKYC          Stage = "kyc"
	StageUnderwriting Stage = "underwriting"
	StageApproved     Stage = "approved"
	StageRejected     Stage = "rejected"
)

func (s Stage) Valid() bool {
	switch s {
	case StageInitial, StageSales, StageKYC, StageUnderwriting, StageApproved, StageRejected:
		return true
	}
	return false
}

// Field names an applicant record slot.
type Field string

const (
	FieldName          Field = "name"
	FieldLoanAmount    Field = "loan_amount"
	FieldPurpose       Field = "purpose"
	FieldEmployment    Field = "employment"
	FieldMonthlyIncome Field = "monthly_income"
	FieldCity          Field = "city"
	FieldPANNumber     Field = "pan_number"
	FieldAadhaarNumber Field = "aadhaar_number"
	FieldPhoneNumber   Field = "phone_number"
	FieldEmail         Field = "email"
)

// SalesChecklist and KYCChecklist are the ordered required-field sets gating
// stage completion. Order is load-bearing: the controller prompts for the
// first missing entry.
var (
	SalesChecklist = []Field{
		FieldName,
		FieldLoanAmount,
		FieldPurpose,
		FieldEmployment,
		FieldMonthlyIncome,
		FieldCity,
	}
	KYCChecklist = []Field{
		FieldPANNumber,
		FieldAadhaarNumber,
		FieldPhoneNumber,
		FieldEmail,
	}
)

type Employment string

const (
	EmploymentSalaried     Employment = "salaried"
	EmploymentSelfEmployed Employment = "self_employed"
)

type Purpose string

const (
	PurposeHoliday        Purpose = "holiday"
	PurposeMarriage       Purpose = "marriage"
	PurposeMedical        Purpose = "medical"
	PurposeHomeRenovation Purpose = "home_renovation"
	PurposeEducation      Purpose = "education"
	PurposeOther          Purpose = "other"
)

// ApplicantRecord is the append-only bag of applicant-provided fields. Slots
// are nil until populated and immutable afterwards: every setter refuses an
// overwrite, so extraction passes are idempotent once a field is present.
type ApplicantRecord struct {
	Name          *string     `json:"name,omitempty"`
	LoanAmount    *int64      `json:"loan_amount,omitempty"`
	Purpose       *Purpose    `json:"purpose,omitempty"`
	Employment    *Employment `json:"employment,omitempty"`
	MonthlyIncome *int64      `json:"monthly_income,omitempty"`
	City          *string     `json:"city,omitempty"`
	PANNumber     *string     `json:"pan_number,omitempty"`
	AadhaarNumber *string     `json:"aadhaar_number,omitempty"`
	PhoneNumber   *string     `json:"phone_number,omitempty"`
	Email         *string     `json:"email,omitempty"`
}

func (r *ApplicantRecord) Has(f Field) bool {
	if r == nil {
		return false
	}
	switch f {
	case FieldName:
		return r.Name != nil
	case FieldLoanAmount:
		return r.LoanAmount != nil
	case FieldPurpose:
		return r.Purpose != nil
	case FieldEmployment:
		return r.Employment != nil
	case FieldMonthlyIncome:
		return r.MonthlyIncome != nil
	case FieldCity:
		return r.City != nil
	case FieldPANNumber:
		return r.PANNumber != nil
	case FieldAadhaarNumber:
		return r.AadhaarNumber != nil
	case FieldPhoneNumber:
		return r.PhoneNumber != nil
	case FieldEmail:
		return r.Email != nil
	}
	return false
}

// FirstMissing returns the first checklist field not yet populated, or false
// when the checklist is complete.
func (r *ApplicantRecord) FirstMissing(checklist []Field) (Field, bool) {
	for _, f := range checklist {
		if !r.Has(f) {
			return f, true
		}
	}
	return "", false
}

func (r *ApplicantRecord) Complete(checklist []Field) bool {
	_, missing := r.FirstMissing(checklist)
	return !missing
}

func (r *ApplicantRecord) SetName(v string) bool {
	if r.Name != nil {
		return false
	}
	r.Name = &v
	return true
}

func (r *ApplicantRecord) SetLoanAmount(v int64) bool {
	if r.LoanAmount != nil || v <= 0 {
		return false
	}
	r.LoanAmount = &v
	return true
}

func (r *ApplicantRecord) SetPurpose(v Purpose) bool {
	if r.Purpose != nil {
		return false
	}
	r.Purpose = &v
	return true
}

func (r *ApplicantRecord) SetEmployment(v Employment) bool {
	if r.Employment != nil {
		return false
	}
	r.Employment = &v
	return true
}

func (r *ApplicantRecord) SetMonthlyIncome(v int64) bool {
	if r.MonthlyIncome != nil || v <= 0 {
		return false
	}
	r.MonthlyIncome = &v
	return true
}

func (r *ApplicantRecord) SetCity(v string) bool {
	if r.City != nil {
		return false
	}
	r.City = &v
	return true
}

func (r *ApplicantRecord) SetPANNumber(v string) bool {
	if r.PANNumber != nil {
		return false
	}
	r.PANNumber = &v
	return true
}

func (r *ApplicantRecord) SetAadhaarNumber(v string) bool {
	if r.AadhaarNumber != nil {
		return false
	}
	r.AadhaarNumber = &v
	return true
}

func (r *ApplicantRecord) SetPhoneNumber(v string) bool {
	if r.PhoneNumber != nil {
		return false
	}
	r.PhoneNumber = &v
	return true
}

func (r *ApplicantRecord) SetEmail(v string) bool {
	if r.Email != nil {
		return false
	}
	r.Email = &v
	return true
}

// NameOr returns the applicant name or a fallback for message templates.
func (r *ApplicantRecord) NameOr(fallback string) string {
	if r != nil && r.Name != nil {
		return *r.Name
	}
	return fallback
}

func (r *ApplicantRecord) clone() ApplicantRecord {
	out := ApplicantRecord{}
	out.Name = cloneptr(r.Name)
	out.LoanAmount = cloneptr(r.LoanAmount)
	out.Purpose = cloneptr(r.Purpose)
	out.Employment = cloneptr(r.Employment)
	out.MonthlyIncome = cloneptr(r.MonthlyIncome)
	out.City = cloneptr(r.City)
	out.PANNumber = cloneptr(r.PANNumber)
	out.AadhaarNumber = cloneptr(r.AadhaarNumber)
	out.PhoneNumber = cloneptr(r.PhoneNumber)
	out.Email = cloneptr(r.Email)
	return out
}

func cloneptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// LoanOffer holds the sanctioned terms. Created exactly once per session, on
// approval, and never mutated afterwards.
type LoanOffer struct {
	Amount       int64   `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	TenureYears  int     `json:"tenure_years"`
	EMI          float64 `json:"emi"`
	CreditScore  int     `json:"credit_score"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one entry of the ordered conversation log. Agent turns carry the
// stage that produced them.
type Turn struct {
	Role    Role      `json:"role"`
	Stage   Stage     `json:"stage"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

/* ------------------------------ SessionState ----------------------------- */

var (
	ErrUnknownStage      = errors.New("unknown stage")
	ErrOfferMissing      = errors.New("approved session has no loan offer")
	ErrOfferUnexpected   = errors.New("loan offer present before approval")
	ErrChecklistsPending = errors.New("stage reached with required fields missing")
)

// SessionState is the source of truth for one loan application session.
type SessionState struct {
	SessionID   string `json:"session_id"`
	ApplicantID string `json:"applicant_id"`
	ChannelType string `json:"channel_type"`

	Stage  Stage           `json:"stage"`
	Record ApplicantRecord `json:"record"`
	Offer  *LoanOffer      `json:"offer,omitempty"`

	// Scores caches bureau lookups per PAN (fallback key "default") for the
	// session lifetime, so repeated underwriting passes are deterministic.
	Scores map[string]int `json:"scores,omitempty"`

	History []Turn `json:"history,omitempty"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID, applicantID, channelType string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:   sessionID,
		ApplicantID: applicantID,
		ChannelType: channelType,
		Stage:       StageInitial,
		Scores:      make(map[string]int, 1),
		UpdatedAt:   now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// EnsureMaps makes sure lazily decoded states have their maps initialized.
func (s *SessionState) EnsureMaps() {
	if s.Scores == nil {
		s.Scores = make(map[string]int, 1)
	}
}

func (s *SessionState) AppendTurn(role Role, content string, now time.Time) {
	s.History = append(s.History, Turn{
		Role:    role,
		Stage:   s.Stage,
		Content: content,
		At:      now.UTC(),
	})
}

func (s *SessionState) CachedScore(key string) (int, bool) {
	if s == nil || s.Scores == nil {
		return 0, false
	}
	score, ok := s.Scores[key]
	return score, ok
}

func (s *SessionState) CacheScore(key string, score int) {
	s.EnsureMaps()
	s.Scores[key] = score
}

// Reset clears all application state back to a fresh Initial session,
// keeping only the session identity.
func (s *SessionState) Reset(now time.Time) {
	s.Stage = StageInitial
	s.Record = ApplicantRecord{}
	s.Offer = nil
	s.Scores = make(map[string]int, 1)
	s.History = nil
	s.Touch(now)
}

// Clone returns a deep copy, so stores can hand out states without sharing
// mutable internals.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	out := *s
	out.Record = s.Record.clone()
	out.Offer = cloneptr(s.Offer)
	if s.Scores != nil {
		out.Scores = make(map[string]int, len(s.Scores))
		for k, v := range s.Scores {
			out.Scores[k] = v
		}
	}
	if s.History != nil {
		out.History = append([]Turn(nil), s.History...)
	}
	return &out
}

// Validate enforces the structural invariants of the workflow:
// stages past KYC require complete checklists, and a loan offer exists
// exactly when the session is approved.
func (s *SessionState) Validate() error {
	if !s.Stage.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStage, s.Stage)
	}

	switch s.Stage {
	case StageUnderwriting, StageApproved, StageRejected:
		if !s.Record.Complete(SalesChecklist) || !s.Record.Complete(KYCChecklist) {
			return fmt.Errorf("%w: stage=%s", ErrChecklistsPending, s.Stage)
		}
	}

	if s.Stage == StageApproved {
		if s.Offer == nil {
			return ErrOfferMissing
		}
	} else if s.Offer != nil {
		return fmt.Errorf("%w: stage=%s", ErrOfferUnexpected, s.Stage)
	}

	return nil
}
