package promo

import (
	"time"

	"promostudio/internal/media"
)

// Remediation is the action offered for credential failures.
type Remediation struct {
	Action  string `json:"action"`
	DocsURL string `json:"docs_url"`
}

// FailureView is the user-facing rendering of a Failure.
type FailureView struct {
	Kind        FailureKind  `json:"kind"`
	Code        FailureCode  `json:"code"`
	Message     string       `json:"message"`
	Remediation *Remediation `json:"remediation,omitempty"`
}

// Snapshot is what the front-end renders for a session.
type Snapshot struct {
	ID             string        `json:"id"`
	State          State         `json:"state"`
	Generating     bool          `json:"generating"`
	LoadingActive  bool          `json:"loading_active"`
	LoadingMessage string        `json:"loading_message,omitempty"`
	Template       *Template     `json:"template,omitempty"`
	Operation      string        `json:"operation,omitempty"`
	Done           bool          `json:"done"`
	Media          *media.Object `json:"media,omitempty"`
	DownloadName   string        `json:"download_name,omitempty"`
	Error          *FailureView  `json:"error,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Snapshot renders the session state with messages in locale.
func (s *Session) Snapshot(locale string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.id,
		State:         s.state,
		Generating:    s.state.Active(),
		LoadingActive: s.loadingActive,
		Operation:     s.operation,
		Done:          s.done,
		UpdatedAt:     s.updatedAt,
	}
	if s.loadingActive {
		snap.LoadingMessage = LoadingMessage(locale, s.step)
	}
	if s.template != nil {
		t := *s.template
		snap.Template = &t
	}
	if s.media != nil {
		m := *s.media
		snap.Media = &m
		snap.DownloadName = media.DefaultFilename
	}
	if s.failure != nil {
		view := &FailureView{
			Kind:    s.failure.Kind,
			Code:    s.failure.Code,
			Message: FailureMessage(locale, s.failure.Code),
		}
		if s.failure.Kind == KindCredential {
			view.Remediation = &Remediation{Action: "select_key", DocsURL: BillingDocsURL}
		}
		snap.Error = view
	}
	return snap
}
