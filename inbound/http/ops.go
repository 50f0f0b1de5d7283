package http

import (
	"net/http"
	"ticket-rush/common/vars"
)

// OpsHttp exposes the latest report of each background job for dashboards
// and smoke checks.
type OpsHttp struct{}

func RegisterOpsHttp(mux *http.ServeMux) *OpsHttp {
	in := &OpsHttp{}

	mux.HandleFunc("GET /api/ops/batch-reports", in.batchReports)

	return in
}

func (in OpsHttp) batchReports(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, vars.GetReports())
}
