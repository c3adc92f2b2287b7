// Package handlers provides http.HandlerFunc handler functions to be used for endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"github.com/localan/shortener/internal/api/rest/middleware"
	"github.com/localan/shortener/internal/api/rest/modeldto"
	"github.com/localan/shortener/internal/config"
	serviceErrors "github.com/localan/shortener/internal/service/errors"
	"github.com/localan/shortener/internal/service/linker"
	"github.com/localan/shortener/internal/service/modellink"
	"github.com/localan/shortener/internal/service/reconciler"
	"github.com/localan/shortener/internal/service/resolver"
	"github.com/localan/shortener/internal/service/trigger"
	storageErrors "github.com/localan/shortener/internal/storage/errors"
	"github.com/localan/shortener/internal/storage/modelstorage"
)

// handlerTimeout bounds storage operations per request.
const handlerTimeout = 500 * time.Millisecond

const notFoundPage = `<!DOCTYPE html>
<html>
<head><title>Not Found</title></head>
<body><h1>404</h1><p>This short link does not exist.</p></body>
</html>
`

// LinkHandler defines data structure handling and provides support for
// adding new implementations.
type LinkHandler struct {
	processor  linker.Processor
	resolver   resolver.Resolver
	reconciler reconciler.Processor
	notifier   trigger.Notifier
	auth       *middleware.Authenticator
	cfg        *config.Config
	log        *zap.Logger
}

// InitLinkHandler initializes a LinkHandler object and sets its attributes.
func InitLinkHandler(processor linker.Processor, res resolver.Resolver, rec reconciler.Processor, notifier trigger.Notifier, auth *middleware.Authenticator, cfg *config.Config, log *zap.Logger) (*LinkHandler, error) {
	if processor == nil || res == nil || rec == nil || notifier == nil {
		return nil, &serviceErrors.NilDependencyError{Msg: "nil service was passed to handler initializer"}
	}
	return &LinkHandler{
		processor:  processor,
		resolver:   res,
		reconciler: rec,
		notifier:   notifier,
		auth:       auth,
		cfg:        cfg,
		log:        log,
	}, nil
}

// HandleListLinks serves the public listing of published and synced links.
func (h *LinkHandler) HandleListLinks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		links, err := h.processor.ListPublic(ctx)
		if err != nil {
			h.writeError(w, err)
			return
		}
		response := modeldto.ResponseRedirects{Redirects: make([]modeldto.ResponseLink, 0, len(links))}
		for _, link := range links {
			response.Redirects = append(response.Redirects, modeldto.ResponseLink{
				Source:      link.Source,
				Destination: link.Destination,
				Title:       link.Title,
				Description: link.Description,
			})
		}
		h.writeJSON(w, http.StatusOK, response)
	}
}

// HandleCreateLink stores a submitted link as a draft and fires the
// automation trigger without awaiting its outcome.
func (h *LinkHandler) HandleCreateLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		var request modeldto.RequestLink
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid JSON body"})
			return
		}
		link, err := h.processor.Create(ctx, request.Source, request.Destination, request.Title, request.Description)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.notifier.TriggerAsync()
		admin := toAdminLink(link)
		h.writeJSON(w, http.StatusCreated, modeldto.ResponseLinkMessage{
			Message: "Link saved as draft - awaiting admin approval for sync",
			Link:    &admin,
		})
	}
}

// HandleUpdateLink replaces a link's content fields. The lifecycle status
// is untouched; if the link was already exported the trigger is fired so
// the manifest catches up.
func (h *LinkHandler) HandleUpdateLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		id, err := strconv.ParseInt(chi.URLParam(r, "linkID"), 10, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid link ID"})
			return
		}
		var request modeldto.RequestLink
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid JSON body"})
			return
		}
		link, err := h.processor.Update(ctx, id, request.Source, request.Destination, request.Title, request.Description)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if link.Status != modelstorage.StatusDraft {
			h.notifier.TriggerAsync()
		}
		admin := toAdminLink(link)
		h.writeJSON(w, http.StatusOK, modeldto.ResponseLinkMessage{Message: "Link updated successfully", Link: &admin})
	}
}

// HandleDeleteLink removes a link, valid from any status. Deleting an
// exported link fires the trigger so the manifest catches up.
func (h *LinkHandler) HandleDeleteLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		id, err := strconv.ParseInt(chi.URLParam(r, "linkID"), 10, 64)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid link ID"})
			return
		}
		link, err := h.processor.Get(ctx, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		removed, err := h.processor.Delete(ctx, id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if !removed {
			h.writeJSON(w, http.StatusNotFound, modeldto.ResponseError{Error: "link not found"})
			return
		}
		if link.Status != modelstorage.StatusDraft {
			h.notifier.TriggerAsync()
		}
		admin := toAdminLink(link)
		h.writeJSON(w, http.StatusOK, modeldto.ResponseLinkMessage{Message: "Link deleted successfully", Link: &admin})
	}
}

// HandleAdminAuth verifies the shared admin credential and issues a
// session token, both in the payload and as a cookie.
func (h *LinkHandler) HandleAdminAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request modeldto.RequestAuth
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid JSON body"})
			return
		}
		if !h.auth.VerifyPassword(request.Password) {
			h.writeJSON(w, http.StatusUnauthorized, modeldto.ResponseAuth{Message: "Invalid password", Authenticated: false})
			return
		}
		token, err := h.auth.IssueToken()
		if err != nil {
			h.log.Error("token issuance failed", zap.Error(err))
			h.writeJSON(w, http.StatusInternalServerError, modeldto.ResponseError{Error: "internal server error"})
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AdminCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})
		h.writeJSON(w, http.StatusOK, modeldto.ResponseAuth{
			Message:       "Authentication successful",
			Authenticated: true,
			Token:         token,
		})
	}
}

// HandleAdminListLinks serves all links including drafts, optionally
// filtered by a status query parameter.
func (h *LinkHandler) HandleAdminListLinks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		var statuses []string
		if status := r.URL.Query().Get("status"); status != "" {
			statuses = append(statuses, status)
		}
		links, err := h.processor.List(ctx, statuses...)
		if err != nil {
			h.writeError(w, err)
			return
		}
		response := modeldto.ResponseAdminRedirects{Redirects: make([]modeldto.ResponseAdminLink, 0, len(links))}
		for _, link := range links {
			response.Redirects = append(response.Redirects, toAdminLink(link))
		}
		h.writeJSON(w, http.StatusOK, response)
	}
}

// HandleLifecycleAction drives admin lifecycle transitions; the only
// supported action is approve.
func (h *LinkHandler) HandleLifecycleAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		var request modeldto.RequestLifecycle
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid JSON body"})
			return
		}
		if request.ID == 0 || request.Action == "" {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "id and action are required"})
			return
		}
		if request.Action != "approve" {
			h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: "invalid action"})
			return
		}
		link, err := h.processor.Approve(ctx, request.ID)
		if err != nil {
			h.writeError(w, err)
			return
		}
		admin := toAdminLink(link)
		h.writeJSON(w, http.StatusOK, modeldto.ResponseLinkMessage{Message: "Link approved for sync", Link: &admin})
	}
}

// HandleSyncPreview reports how many redirects a reconciliation would
// export, without writing the manifest or touching statuses.
func (h *LinkHandler) HandleSyncPreview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		manifest, err := h.reconciler.Preview(ctx)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, modeldto.ResponseSync{Message: "Manifest preview generated", Count: len(manifest.Redirects)})
	}
}

// HandleSync runs a full reconciliation and fires the deploy trigger on
// success. A failed trigger never fails the sync response.
func (h *LinkHandler) HandleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		count, err := h.reconciler.Reconcile(ctx)
		if err != nil {
			h.log.Error("reconciliation failed", zap.Error(err))
			h.writeError(w, err)
			return
		}
		h.notifier.TriggerAsync()
		h.writeJSON(w, http.StatusOK, modeldto.ResponseSync{Message: "Manifest updated successfully", Count: count})
	}
}

// HandleDebug reports store health, the total link count and which
// optional configuration is present. Values themselves are never exposed.
func (h *LinkHandler) HandleDebug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		status := "Database connected"
		if err := h.processor.PingDB(); err != nil {
			status = "Database unavailable"
		}
		total := 0
		if links, err := h.processor.List(ctx); err == nil {
			total = len(links)
		}
		h.writeJSON(w, http.StatusOK, modeldto.ResponseDebug{
			Status:     status,
			TotalLinks: total,
			Env: modeldto.ResponseEnvInfo{
				HasDatabaseDSN:   h.cfg.StorageConfig.DatabaseDSN != "",
				HasDispatchURL:   h.cfg.TriggerConfig.DispatchURL != "",
				HasDeployHookURL: h.cfg.TriggerConfig.DeployHookURL != "",
			},
		})
	}
}

// HandlePingDB verifies the storage connection.
func (h *LinkHandler) HandlePingDB() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.processor.PingDB(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HandleRedirect resolves any unmatched path through the redirect
// resolver: a temporary redirect on a hit, a not-found page otherwise.
func (h *LinkHandler) HandleRedirect() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			h.writeJSON(w, http.StatusNotFound, modeldto.ResponseError{Error: "not found"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()
		destination, ok := h.resolver.Resolve(ctx, r.URL.Path)
		if !ok {
			if strings.Contains(r.Header.Get("Accept"), "text/html") {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(notFoundPage))
				return
			}
			h.writeJSON(w, http.StatusNotFound, modeldto.ResponseError{Error: "not found"})
			return
		}
		w.Header().Set("Location", destination)
		w.WriteHeader(http.StatusTemporaryRedirect)
	}
}

// writeError translates service and storage error kinds into HTTP status
// codes at the boundary; nothing propagates past here.
func (h *LinkHandler) writeError(w http.ResponseWriter, err error) {
	var (
		invalidInput      *serviceErrors.InvalidInputError
		invalidTransition *serviceErrors.InvalidTransitionError
		alreadyExists     *storageErrors.AlreadyExistsError
		notFound          *storageErrors.NotFoundError
		ctxExceeded       *storageErrors.ContextTimeoutExceededError
	)
	switch {
	case errors.As(err, &invalidInput):
		h.writeJSON(w, http.StatusBadRequest, modeldto.ResponseError{Error: err.Error()})
	case errors.As(err, &invalidTransition):
		h.writeJSON(w, http.StatusConflict, modeldto.ResponseError{Error: err.Error()})
	case errors.As(err, &alreadyExists):
		h.writeJSON(w, http.StatusConflict, modeldto.ResponseError{Error: "a link with this source path already exists"})
	case errors.As(err, &notFound):
		h.writeJSON(w, http.StatusNotFound, modeldto.ResponseError{Error: "link not found"})
	case errors.As(err, &ctxExceeded):
		h.writeJSON(w, http.StatusGatewayTimeout, modeldto.ResponseError{Error: "storage timeout"})
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, modeldto.ResponseError{Error: "internal server error", Details: err.Error()})
	}
}

func (h *LinkHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("response encoding failed", zap.Error(err))
	}
}

func toAdminLink(link modellink.Link) modeldto.ResponseAdminLink {
	return modeldto.ResponseAdminLink{
		ID:          link.ID,
		Source:      link.Source,
		Destination: link.Destination,
		Status:      link.Status,
		Title:       link.Title,
		Description: link.Description,
		CreatedAt:   link.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   link.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
