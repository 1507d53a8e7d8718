package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/carhire-site/consent"
	"github.com/jrsteele09/carhire-site/consent/submissions"
	"github.com/jrsteele09/carhire-site/events"
	"github.com/jrsteele09/carhire-site/server/pageviews"
	"github.com/rs/zerolog/log"
)

type consentState struct {
	Visible bool `json:"visible"`
}

type consentStatus struct {
	Decided bool   `json:"decided"`
	Choice  string `json:"choice,omitempty"`
}

type choiceRequest struct {
	View   string `json:"view"`
	Choice string `json:"choice"`
}

type submitRequest struct {
	View       string `json:"view"`
	Analytics  bool   `json:"analytics_cookies"`
	Marketing  bool   `json:"marketing_cookies"`
	Functional bool   `json:"functional_cookies"`
}

// ConsentStreamHandler owns the consent manager of one page view for as long as the
// page keeps its event stream open. Every visibility change is pushed as a "consent" event.
func (s *Server) ConsentStreamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		viewID, err := uuid.Parse(r.URL.Query().Get("view"))
		if err != nil {
			http.Error(w, "Invalid view", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		changed := make(chan struct{}, 1)
		bus := events.NewBus()
		manager := consent.NewManager(s.consentStorage(ctx), bus,
			consent.WithInitialDelay(s.config.GetConsentInitialDelay()),
			consent.WithVisibilityListener(func(visible bool) {
				if visible && s.metrics != nil {
					s.metrics.IncrementPromptShown()
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			}),
		)

		remove := s.views.Add(&pageviews.View{
			ID:        viewID.String(),
			VisitorID: visitorID(ctx),
			Bus:       bus,
			Manager:   manager,
			OpenedAt:  time.Now(),
		})
		defer remove()

		manager.Activate(ctx)
		defer manager.Deactivate()

		if s.metrics != nil {
			defer s.metrics.StreamOpened()()
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		if err := writeConsentEvent(w, manager.Visible()); err != nil {
			return
		}
		flusher.Flush()

		keepAlive := time.NewTicker(s.keepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if err := writeConsentEvent(w, manager.Visible()); err != nil {
					return
				}
				flusher.Flush()
			case <-keepAlive.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeConsentEvent(w http.ResponseWriter, visible bool) error {
	payload, err := json.Marshal(consentState{Visible: visible})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: consent\ndata: %s\n\n", payload)
	return err
}

// ConsentStatusHandler reports whether the visitor has decided. Unreadable storage reads as undecided.
func (s *Server) ConsentStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		choice, decided, err := consent.Load(r.Context(), s.consentStorage(r.Context()))
		if err != nil {
			log.Warn().Err(err).Msg("Consent status unavailable")
		}
		writeJSON(w, http.StatusOK, consentStatus{Decided: decided, Choice: string(choice)})
	}
}

// ConsentChoiceHandler records an accept/reject click. The live manager of the
// page view records it when the view is open so its stream hides the banner.
func (s *Server) ConsentChoiceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req choiceRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		choice, err := consent.ParseChoice(req.Choice)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "choice must be accepted or rejected")
			return
		}

		s.recordChoice(r, req.View, choice)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ConsentSubmitHandler stores the visitor's cookie categories and records the matching choice
func (s *Server) ConsentSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		submission := &submissions.Submission{
			SessionID:  visitorID(r.Context()),
			IPAddress:  clientIP(r),
			UserAgent:  r.UserAgent(),
			Analytics:  req.Analytics,
			Marketing:  req.Marketing,
			Functional: req.Functional,
		}
		if _, err := s.repos.Submissions.Upsert(r.Context(), submission); err != nil {
			log.Err(err).Msg("Failed to save consent submission")
			writeJSONError(w, http.StatusInternalServerError, "failed to save cookie consent")
			return
		}

		s.recordChoice(r, req.View, submission.Choice())
		writeJSON(w, http.StatusOK, map[string]string{"message": "Cookie consent saved successfully"})
	}
}

// recordChoice never fails the request: a storage failure is logged and the banner is hidden anyway
func (s *Server) recordChoice(r *http.Request, viewID string, choice consent.Choice) {
	manager := consent.NewManager(s.consentStorage(r.Context()), nil)
	if viewID != "" {
		if view, err := s.views.Get(viewID, visitorID(r.Context())); err == nil {
			manager = view.Manager
		}
	}

	if err := manager.RecordChoice(r.Context(), choice); err != nil {
		if errors.Is(err, consent.ErrStorageUnavailable) {
			log.Warn().Err(err).Msg("Consent choice not persisted")
		} else {
			log.Err(err).Msg("Failed to record consent choice")
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementConsentChoice(string(choice))
	}
}

// ServicePopupClosedHandler tells a page view's consent manager that another popup has closed
func (s *Server) ServicePopupClosedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.views.Get(r.URL.Query().Get("view"), visitorID(r.Context()))
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "page view not found")
			return
		}
		view.Bus.Publish(events.ServicePopupClosed)
		w.WriteHeader(http.StatusNoContent)
	}
}
