package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

const (
	ProductsPath = "/api/products"

	readyTimeout  = 1 * time.Second
	maxIDAttempts = 5
)

var errIDExhausted = errors.New("could not allocate a unique product id")

type Server struct {
	Store  Store
	Tokens TokenParser
	Log    *zap.Logger

	// NewID generates product ids; uuid.NewString when nil.
	NewID func() string
}

func (s *Server) Routes() http.Handler {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello World"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route(ProductsPath, func(pr chi.Router) {
		pr.Use(AuthJWT(s.Tokens))

		pr.Get("/", s.list)
		pr.Get("/stats", s.stats)
		pr.Get("/{id}", s.get)
		pr.With(validated[CreateProductRequest](log, s.writeError)).Post("/", s.create)
		pr.With(validated[UpdateProductRequest](log, s.writeError)).Put("/{id}", s.update)
		pr.Delete("/{id}", s.delete)
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, List(s.Store.Snapshot(), q))
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, Summarize(s.Store.Snapshot()))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Store.Find(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, r, ErrNotFound)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	req, ok := bodyFrom[CreateProductRequest](r.Context())
	if !ok {
		s.writeError(w, r, errors.New("create: validated body missing from context"))
		return
	}

	id, err := s.freshID()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p := req.product(id)
	s.Store.Append(p)

	u, _ := UserFromContext(r.Context())
	s.Log.Info("product created", zap.String("id", p.ID), zap.String("user_id", u.ID))

	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	req, ok := bodyFrom[UpdateProductRequest](r.Context())
	if !ok {
		s.writeError(w, r, errors.New("update: validated body missing from context"))
		return
	}

	id := chi.URLParam(r, "id")
	p, ok := s.Store.Update(id, req.applyTo)
	if !ok {
		s.writeError(w, r, ErrNotFound)
		return
	}

	u, _ := UserFromContext(r.Context())
	s.Log.Info("product updated", zap.String("id", id), zap.String("user_id", u.ID))

	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.Store.Delete(id) {
		s.writeError(w, r, ErrNotFound)
		return
	}

	u, _ := UserFromContext(r.Context())
	s.Log.Info("product deleted", zap.String("id", id), zap.String("user_id", u.ID))

	kit.WriteMessage(w, http.StatusOK, "Product deleted successfully")
}

// freshID retries the generator until it yields an id not already stored.
func (s *Server) freshID() (string, error) {
	gen := s.NewID
	if gen == nil {
		gen = uuid.NewString
	}

	for i := 0; i < maxIDAttempts; i++ {
		id := gen()
		if _, taken := s.Store.Find(id); !taken {
			return id, nil
		}
	}
	return "", errIDExhausted
}

// writeError is the single place domain errors become HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError

	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "Product not found", nil)
	case errors.As(err, &verr):
		var details any
		if len(verr.Details) > 0 {
			details = verr.Details
		}
		kit.WriteError(w, r, http.StatusBadRequest, verr.Message, details)
	default:
		s.Log.Error("request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
