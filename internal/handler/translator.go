package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"webcorp/telemetry-bridge/internal/classifier"
	"webcorp/telemetry-bridge/internal/delivery"
	"webcorp/telemetry-bridge/internal/journal"
	"webcorp/telemetry-bridge/internal/models"
	"webcorp/telemetry-bridge/internal/observability"
	"webcorp/telemetry-bridge/internal/payload"
	"webcorp/telemetry-bridge/internal/sequencer"

	"go.uber.org/zap"
)

// Deliverer posts a finished payload downstream.
type Deliverer interface {
	Deliver(ctx context.Context, payload *models.OutgoingPayload) (*delivery.Result, error)
}

// TranslatorHandler serves the translation ingress and the counter
// administration endpoints.
type TranslatorHandler struct {
	sequencer *sequencer.Sequencer
	builder   *payload.Builder
	delivery  Deliverer
	journal   *journal.Journal // can be nil when the journal is disabled
	logger    *zap.Logger
}

// NewTranslatorHandler creates a new translator handler
func NewTranslatorHandler(
	seq *sequencer.Sequencer,
	builder *payload.Builder,
	deliverer Deliverer,
	jrnl *journal.Journal,
	logger *zap.Logger,
) *TranslatorHandler {
	return &TranslatorHandler{
		sequencer: seq,
		builder:   builder,
		delivery:  deliverer,
		journal:   jrnl,
		logger:    logger,
	}
}

// HandleEvent is the translation ingress: classify, sequence, build
// and deliver one enriched event. A dry-run request returns the
// constructed payload without invoking the downstream call.
func (h *TranslatorHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var evt models.EnrichedEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		h.logger.Warn("Failed to decode enriched event", zap.Error(err))
		h.writeResponse(w, http.StatusBadRequest, &models.TranslateResponse{
			Status:         "error",
			Message:        "Invalid request body",
			Error:          err.Error(),
			DeviceCounters: h.sequencer.Snapshot(),
		})
		return
	}
	observability.EventsTranslated.Inc()

	merged := models.MergeAttributes(evt.Attributes, evt.Position.Attributes, evt.RawAttributes)
	eventCode := resolveEventCode(merged, evt.EventCode)
	dryRun := r.URL.Query().Get("dryRun") == "1" ||
		strings.EqualFold(r.Header.Get("X-Dry-Run"), "true")

	activities := classifier.Classify(eventCode, merged, evt.Position)
	for _, a := range activities {
		observability.ActivitiesClassified.WithLabelValues(strconv.Itoa(int(a))).Inc()
	}

	imei := evt.DeviceInfo.IMEI
	if imei == "" {
		imei = "UNKNOWN"
	}

	baseMessageID := h.sequencer.Next(imei, eventCode)
	out := h.builder.Build(&evt, merged, activities, baseMessageID)

	h.logger.Info("Event classified",
		zap.Int("event_code", eventCode),
		zap.String("imei", imei),
		zap.Ints("activities", activityInts(activities)),
		zap.Int("base_message_id", baseMessageID),
		zap.Bool("dry_run", dryRun),
	)

	if dryRun {
		h.record(imei, eventCode, activities, baseMessageID, journal.StatusDryRun, "")
		observability.Deliveries.WithLabelValues(journal.StatusDryRun).Inc()
		h.writeResponse(w, http.StatusOK, &models.TranslateResponse{
			Status:         "dry-run",
			Message:        "Constructed payload only; not forwarded",
			Received:       &evt,
			Outgoing:       out,
			DeviceCounters: h.sequencer.Snapshot(),
		})
		return
	}

	result, err := h.delivery.Deliver(r.Context(), out)
	if err != nil {
		// The drawn sequence id is not rolled back.
		h.record(imei, eventCode, activities, baseMessageID, journal.StatusFailed, err.Error())
		observability.Deliveries.WithLabelValues(journal.StatusFailed).Inc()
		h.writeResponse(w, http.StatusInternalServerError, &models.TranslateResponse{
			Status:         "error",
			Message:        "Error forwarding event downstream",
			Error:          err.Error(),
			Received:       &evt,
			Outgoing:       out,
			DeviceCounters: h.sequencer.Snapshot(),
		})
		return
	}

	h.record(imei, eventCode, activities, baseMessageID, journal.StatusSent, "")
	observability.Deliveries.WithLabelValues(journal.StatusSent).Inc()
	h.writeResponse(w, http.StatusOK, &models.TranslateResponse{
		Status:         "success",
		Message:        "Event forwarded downstream",
		Received:       &evt,
		Outgoing:       out,
		Downstream:     result.Body,
		DeviceCounters: h.sequencer.Snapshot(),
	})
}

// HandleStatus reports the service status on the root path
func (h *TranslatorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                "running",
		"message":               "Translation stage ready for enriched events",
		"endpoint":              "POST /events",
		"total_devices_tracked": h.sequencer.Count(),
		"reset_events":          sequencer.ResetCodes(),
	})
}

// HandleHealth is the health check endpoint
func (h *TranslatorHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                "OK",
		"timestamp":             time.Now().Format(time.RFC3339),
		"total_devices_tracked": h.sequencer.Count(),
	})
}

// HandleCounters serves counter inspection and reset:
//
//	GET  /counters               all counters
//	POST /counters/reset         reset all counters
//	GET  /counters/{imei}        one counter
//	POST /counters/{imei}/reset  reset one counter
func (h *TranslatorHandler) HandleCounters(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/counters"), "/")

	switch {
	case rest == "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"total_devices":   h.sequencer.Count(),
			"device_counters": h.sequencer.Snapshot(),
		})

	case rest == "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.sequencer.ResetAll()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":        "success",
			"message":       "All device counters reset",
			"total_devices": 0,
		})

	case strings.HasSuffix(rest, "/reset"):
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		imei := strings.TrimSuffix(rest, "/reset")
		h.sequencer.Reset(imei)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":          "success",
			"message":         "Message counter reset to 1 for device " + imei,
			"imei":            imei,
			"current_counter": 1,
		})

	default:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		counter, ok := h.sequencer.Get(rest)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"status":  "not_found",
				"message": "No counter found for device IMEI: " + rest,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"imei":            rest,
			"current_counter": counter,
		})
	}
}

// HandleDeliveries dumps recent journal entries
func (h *TranslatorHandler) HandleDeliveries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.journal == nil {
		http.Error(w, "Journal disabled", http.StatusNotFound)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	attempts, err := h.journal.Recent(limit)
	if err != nil {
		h.logger.Error("Failed to read journal", zap.Error(err))
		http.Error(w, "Failed to read journal", http.StatusInternalServerError)
		return
	}
	counts, err := h.journal.CountByStatus()
	if err != nil {
		h.logger.Error("Failed to count journal entries", zap.Error(err))
		http.Error(w, "Failed to read journal", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"counts":   counts,
		"attempts": attempts,
	})
}

func (h *TranslatorHandler) record(imei string, eventCode int, activities []classifier.ActivityCode, baseMessageID int, status, errDetail string) {
	if h.journal == nil {
		return
	}
	if err := h.journal.Record(imei, eventCode, activityInts(activities), baseMessageID, status, errDetail); err != nil {
		h.logger.Error("Failed to record delivery attempt", zap.Error(err))
	}
}

func (h *TranslatorHandler) writeResponse(w http.ResponseWriter, status int, resp *models.TranslateResponse) {
	writeJSON(w, status, resp)
}

// resolveEventCode extracts the numeric event code: the merged
// attribute bag's event key first, then the document field, else 0.
func resolveEventCode(attrs models.Attributes, docCode interface{}) int {
	if f, ok := attrs.Float("event"); ok {
		return int(f)
	}
	if docCode != nil {
		bag := models.Attributes{"eventCode": docCode}
		if f, ok := bag.Float("eventCode"); ok {
			return int(f)
		}
	}
	return 0
}

func activityInts(activities []classifier.ActivityCode) []int {
	ids := make([]int, len(activities))
	for i, a := range activities {
		ids[i] = int(a)
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
