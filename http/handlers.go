package http

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kurirai/ml"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handlers serves the form and the prediction API on top of one predictor.
type Handlers struct {
	predictor *ml.Predictor
	modelPath string
	logger    *zap.Logger
}

func NewHandlers(predictor *ml.Predictor, modelPath string, logger *zap.Logger) *Handlers {
	return &Handlers{predictor: predictor, modelPath: modelPath, logger: logger}
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handleFormPredict)
	mux.HandleFunc("POST /api/predict", h.handleAPIPredict)
	mux.HandleFunc("GET /api/model", h.handleModelInfo)
	mux.HandleFunc("GET /api/health", h.handleHealth)
}

// formView is the data the index template renders.
type formView struct {
	Weight    string
	Quantity  string
	Price     string
	City      string
	Discount  string
	OrderTime string
	Error     string
	Result    *resultView
}

type resultView struct {
	Label      string
	Confidence string
	Style      TierStyle
}

func newFormView(in ml.ShipmentInput) formView {
	return formView{
		Weight:    strconv.FormatFloat(in.WeightKG, 'f', -1, 64),
		Quantity:  strconv.FormatInt(in.Quantity, 10),
		Price:     strconv.FormatInt(in.ProductPrice, 10),
		City:      in.DestinationCity,
		Discount:  strconv.FormatInt(in.ShippingDiscount, 10),
		OrderTime: formatHour(in.OrderHour),
	}
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", newFormView(ml.DefaultShipmentInput()))
}

func (h *Handlers) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "index.html", formView{Error: "Form tidak valid: " + err.Error()})
		return
	}

	view := formView{
		Weight:    r.PostFormValue("weight_kg"),
		Quantity:  r.PostFormValue("quantity"),
		Price:     r.PostFormValue("product_price"),
		City:      r.PostFormValue("destination_city"),
		Discount:  r.PostFormValue("shipping_discount"),
		OrderTime: r.PostFormValue("order_time"),
	}

	in, err := parseForm(view)
	if err == nil {
		err = in.Validate()
	}
	if err != nil {
		view.Error = err.Error()
		h.render(w, http.StatusBadRequest, "index.html", view)
		return
	}

	result, err := h.predictor.Predict(r.Context(), in)
	if err != nil {
		h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		view.Error = "Prediksi gagal, coba lagi."
		h.render(w, http.StatusInternalServerError, "index.html", view)
		return
	}

	view.Result = &resultView{
		Label:      result.Label,
		Confidence: FormatConfidence(result.Confidence),
		Style:      TierStyleFor(result.Label),
	}
	h.render(w, http.StatusOK, "index.html", view)
}

// PredictRequest is the JSON body of POST /api/predict. Omitted fields take the
// form defaults; order_time, when present, wins over order_hour.
type PredictRequest struct {
	WeightKG         *float64 `json:"weight_kg"`
	ProductPrice     *int64   `json:"product_price"`
	Quantity         *int64   `json:"quantity"`
	ShippingDiscount *int64   `json:"shipping_discount"`
	OrderHour        *int     `json:"order_hour"`
	OrderTime        string   `json:"order_time"`
	DestinationCity  *string  `json:"destination_city"`
}

func (req PredictRequest) toInput() (ml.ShipmentInput, error) {
	in := ml.DefaultShipmentInput()
	if req.WeightKG != nil {
		in.WeightKG = *req.WeightKG
	}
	if req.ProductPrice != nil {
		in.ProductPrice = *req.ProductPrice
	}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	if req.ShippingDiscount != nil {
		in.ShippingDiscount = *req.ShippingDiscount
	}
	if req.OrderHour != nil {
		in.OrderHour = *req.OrderHour
	}
	if req.OrderTime != "" {
		hour, err := ml.ParseOrderHour(req.OrderTime)
		if err != nil {
			return in, err
		}
		in.OrderHour = hour
	}
	if req.DestinationCity != nil {
		in.DestinationCity = *req.DestinationCity
	}
	return in, in.Validate()
}

type PredictResponse struct {
	Label        string    `json:"label"`
	Confidence   float64   `json:"confidence"`
	Features     []float64 `json:"features"`
	FeatureNames []string  `json:"feature_names"`
	Style        TierStyle `json:"style"`
}

func (h *Handlers) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.predictor.Predict(r.Context(), in)
	if err != nil {
		h.logger.Error("prediction failed", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		Label:        result.Label,
		Confidence:   result.Confidence,
		Features:     result.Vector,
		FeatureNames: ml.FeatureNames(),
		Style:        TierStyleFor(result.Label),
	})
}

func (h *Handlers) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":                h.modelPath,
		"classes":             h.predictor.Classes(),
		"feature_names":       ml.FeatureNames(),
		"seller_city":         ml.SellerCity,
		"bandung_area_tokens": ml.BandungAreaTokens(),
		"base_shipping_fee":   ml.BaseShippingFee,
	})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.predictor.Ready(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "model_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUnavailable is the only handler mounted when the model failed to load.
func (h *Handlers) handleUnavailable(w http.ResponseWriter, r *http.Request) {
	err := h.predictor.Ready()
	message := "Model '" + h.modelPath + "' belum ada. Jalankan notebook training dulu!"
	if err != nil && !errors.Is(err, ml.ErrArtifactMissing) {
		message = "Model '" + h.modelPath + "' tidak dapat dimuat."
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "model_unavailable",
			"error":  message,
		})
		return
	}
	h.render(w, http.StatusServiceUnavailable, "unavailable.html", map[string]string{"Message": message})
}

func (h *Handlers) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", zap.String("template", name), zap.Error(err))
	}
}

func parseForm(view formView) (ml.ShipmentInput, error) {
	var in ml.ShipmentInput
	var err error

	if in.WeightKG, err = strconv.ParseFloat(strings.TrimSpace(view.Weight), 64); err != nil {
		return in, formFieldError("Berat (KG)")
	}
	if in.Quantity, err = strconv.ParseInt(strings.TrimSpace(view.Quantity), 10, 64); err != nil {
		return in, formFieldError("Jumlah Pcs")
	}
	if in.ProductPrice, err = strconv.ParseInt(strings.TrimSpace(view.Price), 10, 64); err != nil {
		return in, formFieldError("Harga (Rp)")
	}
	if in.ShippingDiscount, err = strconv.ParseInt(strings.TrimSpace(view.Discount), 10, 64); err != nil {
		return in, formFieldError("Diskon Ongkir (Rp)")
	}
	if in.OrderHour, err = ml.ParseOrderHour(strings.TrimSpace(view.OrderTime)); err != nil {
		return in, err
	}
	in.DestinationCity = view.City
	return in, nil
}

func formFieldError(label string) error {
	return errors.New(label + " harus berupa angka")
}

func formatHour(hour int) string {
	if hour < 10 {
		return "0" + strconv.Itoa(hour) + ":00"
	}
	return strconv.Itoa(hour) + ":00"
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
