package http

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/domain"
	"github.com/caroline-findley315n/Rent-Asset-FHE/internal/usecase"

	"github.com/gin-gonic/gin"
)

// CallerHeader carries the caller's address. The deployment fronts this
// service with an authenticating gateway that sets the header; the service
// itself only validates the format.
const CallerHeader = "X-Caller-Address"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type configResponse struct {
	Owner           string `json:"owner"`
	Paused          bool   `json:"paused"`
	CooldownSeconds int    `json:"cooldown_seconds"`
	InstanceAddress string `json:"instance_address"`
	UpdatedAt       string `json:"updated_at"`
}

type providerResponse struct {
	Address    string `json:"address"`
	IsProvider bool   `json:"is_provider"`
	IsOwner    bool   `json:"is_owner"`
}

type batchResponse struct {
	BatchID  int64  `json:"batch_id"`
	Status   string `json:"status"`
	OpenedAt string `json:"opened_at"`
	ClosedAt string `json:"closed_at,omitempty"`
}

type agreementResponse struct {
	BatchID      int64  `json:"batch_id"`
	Provider     string `json:"provider"`
	AssetID      string `json:"asset_id"`
	PricePerDay  string `json:"price_per_day"`
	DurationDays string `json:"duration_days"`
	Collateral   string `json:"collateral"`
	Active       string `json:"active"`
	SubmittedAt  string `json:"submitted_at"`
}

type decryptionResponse struct {
	RequestID   string `json:"request_id"`
	BatchID     int64  `json:"batch_id"`
	Commitment  string `json:"commitment"`
	Processed   bool   `json:"processed"`
	CreatedAt   string `json:"created_at"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

type cooldownResponse struct {
	Address            string `json:"address"`
	SubmitNextAllowed  string `json:"submit_next_allowed"`
	DecryptNextAllowed string `json:"decrypt_next_allowed"`
}

type eventResponse struct {
	ID            string          `json:"id"`
	Seq           int64           `json:"seq"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PayloadHash   string          `json:"payload_hash"`
	PrevEventHash string          `json:"prev_event_hash"`
	EventHash     string          `json:"event_hash"`
	CreatedAt     string          `json:"created_at"`
}

type transferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

type addProviderRequest struct {
	Address string `json:"address"`
}

type setCooldownRequest struct {
	Seconds int `json:"seconds"`
}

type submitAgreementRequest struct {
	AssetID      string `json:"asset_id"`
	PricePerDay  string `json:"price_per_day"`
	DurationDays string `json:"duration_days"`
	Collateral   string `json:"collateral"`
	Active       string `json:"active"`
}

type requestDecryptionRequest struct {
	BatchID int64 `json:"batch_id"`
}

type decryptionCallbackRequest struct {
	Payload string `json:"payload"`
	Proof   string `json:"proof"`
}

type finalizeResponse struct {
	RequestID    string `json:"request_id"`
	BatchID      int64  `json:"batch_id"`
	AssetID      uint64 `json:"asset_id"`
	PricePerDay  uint64 `json:"price_per_day"`
	DurationDays uint64 `json:"duration_days"`
	Collateral   uint64 `json:"collateral"`
	Active       bool   `json:"active"`
}

func (s *Server) handleGetConfig(c *gin.Context) {
	cfg, err := s.stores.Config.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, configResponse{
		Owner:           cfg.Owner.String(),
		Paused:          cfg.Paused,
		CooldownSeconds: cfg.CooldownSeconds,
		InstanceAddress: cfg.InstanceAddress.String(),
		UpdatedAt:       cfg.UpdatedAt.Format(time.RFC3339Nano),
	})
}

func (s *Server) handleGetProvider(c *gin.Context) {
	addr, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	isProvider, err := s.stores.Providers.Exists(c.Request.Context(), addr)
	if err != nil {
		writeError(c, err)
		return
	}
	cfg, err := s.stores.Config.Get(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, providerResponse{
		Address:    addr.String(),
		IsProvider: isProvider,
		IsOwner:    addr == cfg.Owner,
	})
}

func (s *Server) handleGetCurrentBatch(c *gin.Context) {
	current, err := s.stores.Batches.CurrentID(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if current == 0 {
		writeError(c, domain.ErrNotFound)
		return
	}
	batch, err := s.stores.Batches.Get(c.Request.Context(), current)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildBatchResponse(batch))
}

func (s *Server) handleGetBatch(c *gin.Context) {
	batchID, err := parseBatchID(c.Param("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	batch, err := s.stores.Batches.Get(c.Request.Context(), batchID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildBatchResponse(batch))
}

func (s *Server) handleGetAgreement(c *gin.Context) {
	batchID, err := parseBatchID(c.Param("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	agreement, err := s.stores.Agreements.Get(c.Request.Context(), batchID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, agreementResponse{
		BatchID:      agreement.BatchID,
		Provider:     agreement.Provider.String(),
		AssetID:      hex.EncodeToString(agreement.AssetID),
		PricePerDay:  hex.EncodeToString(agreement.PricePerDay),
		DurationDays: hex.EncodeToString(agreement.DurationDays),
		Collateral:   hex.EncodeToString(agreement.Collateral),
		Active:       hex.EncodeToString(agreement.Active),
		SubmittedAt:  agreement.SubmittedAt.Format(time.RFC3339Nano),
	})
}

func (s *Server) handleGetDecryption(c *gin.Context) {
	dc, err := s.stores.Contexts.Get(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildDecryptionResponse(dc))
}

func (s *Server) handleGetCooldowns(c *gin.Context) {
	addr, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	submitNext, err := s.cooldowns.NextAllowed(c.Request.Context(), domain.CooldownSubmit, addr)
	if err != nil {
		writeError(c, err)
		return
	}
	decryptNext, err := s.cooldowns.NextAllowed(c.Request.Context(), domain.CooldownDecrypt, addr)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cooldownResponse{
		Address:            addr.String(),
		SubmitNextAllowed:  submitNext.UTC().Format(time.RFC3339Nano),
		DecryptNextAllowed: decryptNext.UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleListEvents(c *gin.Context) {
	events, err := s.stores.Events.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		payload, ok := event.Payload.([]byte)
		if !ok {
			writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "unexpected event payload form")
			return
		}
		out = append(out, eventResponse{
			ID:            event.ID,
			Seq:           event.Seq,
			EventType:     string(event.EventType),
			Payload:       json.RawMessage(payload),
			PayloadHash:   event.PayloadHash,
			PrevEventHash: event.PrevEventHash,
			EventHash:     event.EventHash,
			CreatedAt:     event.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (s *Server) handleTransferOwnership(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	newOwner, err := domain.ParseAddress(req.NewOwner)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.admin.TransferOwnership(c.Request.Context(), caller, newOwner); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": newOwner.String()})
}

func (s *Server) handleAddProvider(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	var req addProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	addr, err := domain.ParseAddress(req.Address)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.admin.AddProvider(c.Request.Context(), caller, addr); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.String()})
}

func (s *Server) handleRemoveProvider(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	addr, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.admin.RemoveProvider(c.Request.Context(), caller, addr); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.String()})
}

func (s *Server) handlePause(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	if err := s.admin.Pause(c.Request.Context(), caller); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (s *Server) handleUnpause(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	if err := s.admin.Unpause(c.Request.Context(), caller); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

func (s *Server) handleSetCooldown(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	var req setCooldownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.admin.SetCooldown(c.Request.Context(), caller, req.Seconds); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cooldown_seconds": req.Seconds})
}

func (s *Server) handleOpenBatch(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	batchID, err := s.batches.Open(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch_id": batchID})
}

func (s *Server) handleCloseBatch(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	batchID, err := parseBatchID(c.Param("batch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.batches.Close(c.Request.Context(), caller, batchID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch_id": batchID})
}

func (s *Server) handleSubmitAgreement(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	var req submitAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	handles, err := parseHandles(req.AssetID, req.PricePerDay, req.DurationDays, req.Collateral, req.Active)
	if err != nil {
		writeError(c, err)
		return
	}
	batchID, err := s.submit.Execute(c.Request.Context(), caller, usecase.SubmitAgreementRequest{
		AssetID:      handles[0],
		PricePerDay:  handles[1],
		DurationDays: handles[2],
		Collateral:   handles[3],
		Active:       handles[4],
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch_id": batchID})
}

func (s *Server) handleRequestDecryption(c *gin.Context) {
	caller, ok := callerAddress(c)
	if !ok {
		return
	}
	var req requestDecryptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	dc, err := s.request.Execute(c.Request.Context(), caller, req.BatchID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildDecryptionResponse(dc))
}

func (s *Server) handleDecryptionCallback(c *gin.Context) {
	var req decryptionCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		writeError(c, domain.ErrPayloadMalformed)
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		writeError(c, domain.ErrProofInvalid)
		return
	}
	result, err := s.finalize.Execute(c.Request.Context(), c.Param("request_id"), payload, proof)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, finalizeResponse{
		RequestID:    result.RequestID,
		BatchID:      result.BatchID,
		AssetID:      result.Cleartext.AssetID,
		PricePerDay:  result.Cleartext.PricePerDay,
		DurationDays: result.Cleartext.DurationDays,
		Collateral:   result.Cleartext.Collateral,
		Active:       result.Cleartext.Active,
	})
}

func callerAddress(c *gin.Context) (domain.Address, bool) {
	raw := c.GetHeader(CallerHeader)
	if raw == "" {
		writeErrorCode(c, http.StatusUnauthorized, "CALLER_REQUIRED", "missing caller address header")
		return "", false
	}
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		writeErrorCode(c, http.StatusUnauthorized, "CALLER_INVALID", "invalid caller address")
		return "", false
	}
	return addr, true
}

func parseBatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidBatch
	}
	return id, nil
}

func parseHandles(values ...string) ([]domain.Handle, error) {
	out := make([]domain.Handle, 0, len(values))
	for _, v := range values {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, domain.ErrHandleNotInitialized
		}
		out = append(out, domain.Handle(decoded))
	}
	return out, nil
}

func buildBatchResponse(batch domain.Batch) batchResponse {
	out := batchResponse{
		BatchID:  batch.ID,
		Status:   string(batch.Status),
		OpenedAt: batch.OpenedAt.Format(time.RFC3339Nano),
	}
	if batch.ClosedAt != nil {
		out.ClosedAt = batch.ClosedAt.Format(time.RFC3339Nano)
	}
	return out
}

func buildDecryptionResponse(dc domain.DecryptionContext) decryptionResponse {
	out := decryptionResponse{
		RequestID:  dc.RequestID,
		BatchID:    dc.BatchID,
		Commitment: hex.EncodeToString(dc.Commitment),
		Processed:  dc.Processed,
		CreatedAt:  dc.CreatedAt.Format(time.RFC3339Nano),
	}
	if dc.ProcessedAt != nil {
		out.ProcessedAt = dc.ProcessedAt.Format(time.RFC3339Nano)
	}
	return out
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		status, code = http.StatusBadRequest, "INVALID_ADDRESS"
	case errors.Is(err, domain.ErrHandleNotInitialized):
		status, code = http.StatusBadRequest, "HANDLE_NOT_INITIALIZED"
	case errors.Is(err, domain.ErrPayloadMalformed):
		status, code = http.StatusBadRequest, "PAYLOAD_MALFORMED"
	case errors.Is(err, domain.ErrProofInvalid):
		status, code = http.StatusBadRequest, "PROOF_INVALID"
	case errors.Is(err, domain.ErrInvalidBatch):
		status, code = http.StatusBadRequest, "INVALID_BATCH"
	case errors.Is(err, domain.ErrInvalidCooldown):
		status, code = http.StatusBadRequest, "INVALID_COOLDOWN"
	case errors.Is(err, domain.ErrNotOwner):
		status, code = http.StatusForbidden, "NOT_OWNER"
	case errors.Is(err, domain.ErrNotProvider):
		status, code = http.StatusForbidden, "NOT_PROVIDER"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrBatchClosed):
		status, code = http.StatusConflict, "BATCH_CLOSED"
	case errors.Is(err, domain.ErrBatchNotClosed):
		status, code = http.StatusConflict, "BATCH_NOT_CLOSED"
	case errors.Is(err, domain.ErrBatchStillOpen):
		status, code = http.StatusConflict, "BATCH_STILL_OPEN"
	case errors.Is(err, domain.ErrAlreadyPaused):
		status, code = http.StatusConflict, "ALREADY_PAUSED"
	case errors.Is(err, domain.ErrNotPaused):
		status, code = http.StatusConflict, "NOT_PAUSED"
	case errors.Is(err, domain.ErrRequestProcessed):
		status, code = http.StatusConflict, "REQUEST_PROCESSED"
	case errors.Is(err, domain.ErrCommitmentMismatch):
		status, code = http.StatusConflict, "COMMITMENT_MISMATCH"
	case errors.Is(err, domain.ErrSystemPaused):
		status, code = http.StatusLocked, "PAUSED"
	case errors.Is(err, domain.ErrCooldownActive):
		status, code = http.StatusTooManyRequests, "COOLDOWN_ACTIVE"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
