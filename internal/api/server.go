package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"poolScope/internal/pricemath"
)

const (
	TickRoutePath     = "/v1/tick"
	PriceRoutePath    = "/v1/price"
	SqrtRoutePath     = "/v1/sqrt"
	RangeRoutePath    = "/v1/range"
	ValidateRoutePath = "/v1/validate"
	FeeTiersRoutePath = "/v1/fee-tiers"

	contentType     = "Content-Type"
	applicationJSON = "application/json; charset=utf-8"
)

// Server serves read-only price math endpoints.
type Server struct {
	logger  *zap.Logger
	timeout time.Duration
}

// NewServer returns a Server. A nil logger discards logs and a non-positive
// timeout means five seconds.
func NewServer(logger *zap.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Server{logger: logger, timeout: timeout}
}

// Handler returns the router wrapped with CORS and a request timeout.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET(TickRoutePath, s.Tick)
	router.GET(PriceRoutePath, s.Price)
	router.GET(SqrtRoutePath, s.Sqrt)
	router.GET(RangeRoutePath, s.Range)
	router.GET(ValidateRoutePath, s.Validate)
	router.GET(FeeTiersRoutePath, s.FeeTiers)

	cor := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
	return cor.Handler(http.TimeoutHandler(router, s.timeout, "server timeout"))
}

func (s *Server) Tick(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	price, err := floatParam(r, "price")
	if err != nil {
		s.writeError(w, err)
		return
	}
	spacing, err := spacingParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := Tick(price, spacing)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, out, http.StatusOK)
}

func (s *Server) Price(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tick, err := tickParam(r, "tick")
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := Price(tick)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, out, http.StatusOK)
}

// Sqrt encodes ?price= or decodes ?sqrt_price_x96=.
func (s *Server) Sqrt(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		out SqrtResult
		err error
	)
	if raw := r.URL.Query().Get("sqrt_price_x96"); raw != "" {
		out, err = DecodeSqrt(raw)
	} else {
		var price float64
		if price, err = floatParam(r, "price"); err == nil {
			out, err = Sqrt(price)
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, out, http.StatusOK)
}

func (s *Server) Range(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	price, err := floatParam(r, "price")
	if err != nil {
		s.writeError(w, err)
		return
	}
	percent, err := floatParam(r, "percent")
	if err != nil {
		s.writeError(w, err)
		return
	}
	spacing, err := spacingParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := Range(price, percent, spacing)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, out, http.StatusOK)
}

// Validate answers 200 for valid ranges and 422 with the reason otherwise.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lower, err := tickParam(r, "lower")
	if err != nil {
		s.writeError(w, err)
		return
	}
	upper, err := tickParam(r, "upper")
	if err != nil {
		s.writeError(w, err)
		return
	}
	spacing, err := spacingParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out, err := Validate(lower, upper, spacing)
	switch {
	case err == nil:
		s.write(w, out, http.StatusOK)
	case errors.Is(err, pricemath.ErrInvalidArgument):
		s.writeError(w, err)
	default:
		s.write(w, out, http.StatusUnprocessableEntity)
	}
}

type feeTier struct {
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
}

func (s *Server) FeeTiers(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	tiers := make([]feeTier, 0, 3)
	for _, fee := range pricemath.FeeTiers() {
		tiers = append(tiers, feeTier{Fee: fee, TickSpacing: pricemath.GetTickSpacing(fee)})
	}
	s.write(w, tiers, http.StatusOK)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var rangeErr *pricemath.TickRangeError
	if errors.Is(err, pricemath.ErrInvalidArgument) ||
		errors.Is(err, pricemath.ErrTickOutOfBounds) ||
		errors.Is(err, pricemath.ErrSqrtPriceOutOfBounds) ||
		errors.As(err, &rangeErr) {
		code = http.StatusBadRequest
	}
	s.write(w, errorResponse{Error: err.Error()}, code)
}

// write encodes before sending the header so an unencodable payload becomes a 500.
func (s *Server) write(w http.ResponseWriter, payload interface{}, code int) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", zap.Error(err))
		body.Reset()
		body.WriteString(`{"error":"encode response"}` + "\n")
		code = http.StatusInternalServerError
	}
	w.Header().Set(contentType, applicationJSON)
	w.WriteHeader(code)
	if _, err := w.Write(body.Bytes()); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

// floatParam parses a finite float query parameter.
func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, paramError(name, raw)
	}
	return v, nil
}

func tickParam(r *http.Request, name string) (int32, error) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, paramError(name, raw)
	}
	return int32(v), nil
}

// spacingParam reads ?spacing=, or maps ?fee= (default 3000) to its spacing.
func spacingParam(r *http.Request) (int32, error) {
	q := r.URL.Query()
	if raw := q.Get("spacing"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return 0, paramError("spacing", raw)
		}
		return int32(v), nil
	}
	fee := uint64(3000)
	if raw := q.Get("fee"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return 0, paramError("fee", raw)
		}
		fee = v
	}
	return pricemath.GetTickSpacing(uint32(fee)), nil
}

func paramError(name, raw string) error {
	return fmt.Errorf("%w: %s=%q", pricemath.ErrInvalidArgument, name, raw)
}
