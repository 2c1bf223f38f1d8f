package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"catalogservice/internal/platform/observability"
	"catalogservice/internal/stock"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ConsumerStatus reports the state of the stock update consumer.
type ConsumerStatus interface {
	State() stock.State
}

// QueueStatus reports the occupancy of the stock update queue.
type QueueStatus interface {
	Len() int
	Cap() int
}

// Handler serves the catalog HTTP API.
type Handler struct {
	service   *Service
	submitter stock.Submitter
	consumer  ConsumerStatus
	queue     QueueStatus
	logger    observability.Logger
	tracer    observability.Tracer
}

func NewHandler(service *Service, submitter stock.Submitter, consumer ConsumerStatus, queue QueueStatus, logger observability.Logger, tracer observability.Tracer) *Handler {
	return &Handler{
		service:   service,
		submitter: submitter,
		consumer:  consumer,
		queue:     queue,
		logger:    logger,
		tracer:    tracer,
	}
}

// Routes returns the instrumented router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	handleFunc := func(pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
		handler := otelhttp.WithRouteTag(pattern, http.HandlerFunc(handlerFunc))
		mux.Handle(pattern, handler)
	}

	handleFunc("GET /api/v1/product", h.listProducts)
	for _, version := range []string{"v1", "v2"} {
		handleFunc("GET /api/"+version+"/product/{id}", h.getProduct)
		handleFunc("POST /api/"+version+"/product", h.createProduct)
	}
	handleFunc("PATCH /api/v1/product/stock", h.updateStock)
	handleFunc("PATCH /api/v2/product/stock", h.queueStockUpdate)
	handleFunc("GET /healthz", h.health)

	return otelhttp.NewHandler(mux, "http-server",
		otelhttp.WithMeterProvider(otel.GetMeterProvider()),
		otelhttp.WithTracerProvider(otel.GetTracerProvider()),
	)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: id must be an integer", ErrInvalidRequest))
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", r.URL.Path, product.ID))
	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	var req UpdateStockQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.UpdateStockQuantity(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type queuedResponse struct {
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
}

func (h *Handler) queueStockUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "stock_update.submit")
	defer span.End()

	var req UpdateStockQuantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ValidateStockUpdate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Int("product.id", req.ID),
		attribute.Int("stock.new_quantity", req.StockQuantity),
	)

	correlationID, err := h.submitter.Submit(ctx, req.ID, req.StockQuantity)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("stock.correlation_id", correlationID.String()))
	h.writeJSON(w, http.StatusAccepted, queuedResponse{
		Message:       "Stock update queued.",
		CorrelationID: correlationID.String(),
	})
}

type healthResponse struct {
	Status        string `json:"status"`
	ConsumerState string `json:"consumerState"`
	QueueDepth    int    `json:"queueDepth"`
	QueueCapacity int    `json:"queueCapacity"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	state := h.consumer.State()
	resp := healthResponse{
		Status:        "ok",
		ConsumerState: state.String(),
		QueueDepth:    h.queue.Len(),
		QueueCapacity: h.queue.Cap(),
	}

	status := http.StatusOK
	if state == stock.StateStopping || state == stock.StateStopped {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: malformed JSON body: %w", ErrInvalidRequest, err))
		return false
	}
	return true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, stock.ErrSubmissionCancelled):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
		h.logger.Error("❌ Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("trace_id", trace.SpanContextFromContext(r.Context()).TraceID().String()),
		)
		h.writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to write HTTP response", zap.Error(err))
	}
}
