package httptransport

import (
	"encoding/json"
	"net/http"

	"stakepool/internal/app/settlement"

	"github.com/rs/zerolog/log"
)

var statusByCode = map[string]int{
	"invalid_request": http.StatusBadRequest,
	"invalid_config":  http.StatusBadRequest,
	"invalid_amount":  http.StatusBadRequest,
	"invalid_place":   http.StatusBadRequest,
	"length_mismatch": http.StatusBadRequest,

	"unauthorized": http.StatusForbidden,

	"cash_game_not_found":  http.StatusNotFound,
	"tournament_not_found": http.StatusNotFound,
	"asset_not_found":      http.StatusNotFound,
	"player_not_found":     http.StatusNotFound,

	"already_registered":   http.StatusConflict,
	"duplicate_player":     http.StatusConflict,
	"duplicate_prize":      http.StatusConflict,
	"already_started":      http.StatusConflict,
	"registration_closed":  http.StatusConflict,
	"tournament_closed":    http.StatusConflict,
	"game_not_empty":       http.StatusConflict,
	"tournament_not_empty": http.StatusConflict,

	"table_full":           http.StatusUnprocessableEntity,
	"player_not_active":    http.StatusUnprocessableEntity,
	"not_registered":       http.StatusUnprocessableEntity,
	"deposit_out_of_range": http.StatusUnprocessableEntity,
	"insufficient_funds":   http.StatusUnprocessableEntity,
	"insufficient_escrow":  http.StatusUnprocessableEntity,
	"asset_not_held":       http.StatusUnprocessableEntity,
}

// StatusFor maps a settlement error code to its HTTP status.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := settlement.Code(err)
	status := StatusFor(code)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request_failed")
	}
	metricErrorResponses.Add(code, 1)
	WriteHTTPError(w, status, code)
}

// writeResult encodes resp, or the mapped error when err is set.
func writeResult(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reports false after writing the error response itself.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		metricDecodeErrors.Add(1)
		WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}
