package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tiler/internal/dtype"
	"github.com/samcharles93/tiler/internal/tiling"
	"github.com/samcharles93/tiler/pkg/planblob"
)

func newTestEcho(cfg tiling.Config) *echo.Echo {
	server := NewServer(Options{DefaultPlatform: "sim8", Config: cfg})
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestPlanLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	body := `{"op":"sqrt","inputs":[{"dtype":"float32","shape":[8192]}]}`
	createRec := doJSON(t, e, http.MethodPost, "/v1/plans", body)
	if createRec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", createRec.Code, createRec.Body.String())
	}
	created := decodeBody[PlanRecord](t, createRec)
	if !strings.HasPrefix(created.ID, "plan_") {
		t.Fatalf("unexpected plan id %q", created.ID)
	}
	if created.Platform.Name != "sim8" {
		t.Fatalf("expected default platform sim8, got %q", created.Platform.Name)
	}
	// sqrt is single-buffered with four float32 scratch copies
	p := created.Plan
	if p.UnitCount != 8 || p.TileElements != 12256 || p.Elements[0] != 1024 {
		t.Fatalf("unexpected plan %s", p)
	}
	if created.Signature == nil || created.Signature.WorkingSet != 4 || created.Signature.Out != dtype.Float32 {
		t.Fatalf("unexpected signature %+v", created.Signature)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/plans/"+created.ID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}

	listRec := doJSON(t, e, http.MethodGet, "/v1/plans", "")
	list := decodeBody[ListResponse[PlanRecord]](t, listRec)
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("unexpected plan list %+v", list)
	}

	blobRec := doJSON(t, e, http.MethodGet, "/v1/plans/"+created.ID+"/blob", "")
	if blobRec.Code != http.StatusOK {
		t.Fatalf("blob status: got %d body=%s", blobRec.Code, blobRec.Body.String())
	}
	if got := blobRec.Header().Get(echo.HeaderContentType); got != echo.MIMEOctetStream {
		t.Fatalf("blob content type %q", got)
	}
	decoded, err := planblob.Decode(blobRec.Body.Bytes())
	if err != nil {
		t.Fatalf("decode blob: %v", err)
	}
	if decoded.TileElements != p.TileElements || decoded.TotalBlocks != p.TotalBlocks {
		t.Fatalf("blob plan %s differs from %s", decoded, p)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/plans/"+created.ID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	getDeletedRec := doJSON(t, e, http.MethodGet, "/v1/plans/"+created.ID, "")
	if getDeletedRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", getDeletedRec.Code, getDeletedRec.Body.String())
	}
}

func TestRawPlanRequest(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	body := `{"units":32,"buffer_bytes":196608,"request":{"total_elements":1009,"element_bytes":4,"working_set":3}}`
	rec := doJSON(t, e, http.MethodPost, "/v1/plans", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", rec.Code, rec.Body.String())
	}
	created := decodeBody[PlanRecord](t, rec)
	p := created.Plan
	if p.TotalBlocks != 127 || p.BigUnits != 31 || p.Padding != 7 || p.UnitCount != 32 {
		t.Fatalf("unexpected plan %s", p)
	}
	if created.Signature != nil {
		t.Fatalf("raw plans carry no signature")
	}
}

func TestPlanValidationErrors(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	tests := []struct {
		name   string
		body   string
		status int
		substr string
	}{
		{"malformed", `{"op":`, http.StatusBadRequest, ""},
		{"unknown field", `{"op":"sqrt","colour":1}`, http.StatusBadRequest, ""},
		{"neither op nor request", `{}`, http.StatusBadRequest, "exactly one"},
		{"unknown op", `{"op":"gelu","inputs":[]}`, http.StatusNotFound, "unknown operator"},
		{"unknown platform", `{"op":"sqrt","platform":"tpu","inputs":[{"dtype":"float32","shape":[4]}]}`, http.StatusNotFound, "unknown platform"},
		{"bad dtype", `{"op":"sqrt","inputs":[{"dtype":"int32","shape":[4]}]}`, http.StatusBadRequest, "unsupported dtype"},
		{"empty input", `{"op":"sqrt","inputs":[{"dtype":"float32","shape":[0]}]}`, http.StatusBadRequest, "unsupported shape"},
		{"broadcast", `{"op":"sub","inputs":[{"dtype":"float32","shape":[3]},{"dtype":"float32","shape":[4]}]}`, http.StatusBadRequest, "broadcast"},
		{"arity", `{"op":"sub","inputs":[{"dtype":"float32","shape":[3]}]}`, http.StatusBadRequest, "wrong number of inputs"},
		{"bad platform", `{"buffer_bytes":100,"request":{"total_elements":8,"element_bytes":4,"working_set":3}}`, http.StatusBadRequest, "platform"},
	}
	for _, tt := range tests {
		rec := doJSON(t, e, http.MethodPost, "/v1/plans", tt.body)
		if rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d body=%s", tt.name, tt.status, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), tt.substr) {
			t.Fatalf("%s: body %s missing %q", tt.name, rec.Body.String(), tt.substr)
		}
	}
}

func TestBlobRejectsWidePlans(t *testing.T) {
	t.Parallel()

	cfg := tiling.DefaultConfig()
	cfg.MaxUnits = 48
	e := newTestEcho(cfg)
	body := `{"platform":"ascend910b","request":{"total_elements":384,"element_bytes":4,"working_set":3}}`
	rec := doJSON(t, e, http.MethodPost, "/v1/plans", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status: got %d body=%s", rec.Code, rec.Body.String())
	}
	created := decodeBody[PlanRecord](t, rec)
	if created.Plan.UnitCount != 48 {
		t.Fatalf("expected 48 units, got %d", created.Plan.UnitCount)
	}

	blobRec := doJSON(t, e, http.MethodGet, "/v1/plans/"+created.ID+"/blob", "")
	if blobRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", blobRec.Code, blobRec.Body.String())
	}
}

func TestInvoke(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	body := `{"inputs":[
		{"dtype":"float32","shape":[4],"data":[1,2,3,4]},
		{"dtype":"float32","shape":[1],"data":[1]}
	],"attrs":{"alpha":2}}`
	rec := doJSON(t, e, http.MethodPost, "/v1/ops/axpy/invoke", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoke status: got %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[InvokeResponse](t, rec)
	if len(resp.Outputs) != 1 {
		t.Fatalf("expected one output, got %d", len(resp.Outputs))
	}
	want := []float64{3, 5, 7, 9}
	for i, v := range resp.Outputs[0].Data {
		if v != want[i] {
			t.Fatalf("output[%d]: got %v want %v", i, v, want[i])
		}
	}
	if resp.Plan == nil || resp.Stats == nil {
		t.Fatalf("expected plan and stats in response")
	}
}

func TestInvokeScan(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	body := `{"inputs":[{"dtype":"int32","shape":[2,3],"data":[3,1,2,0,5,4]}],"attrs":{"dim":1}}`
	rec := doJSON(t, e, http.MethodPost, "/v1/ops/cummin/invoke", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("invoke status: got %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[InvokeResponse](t, rec)
	if len(resp.Outputs) != 2 {
		t.Fatalf("expected values and indices, got %d outputs", len(resp.Outputs))
	}
	vals, idx := resp.Outputs[0], resp.Outputs[1]
	if idx.DType != dtype.Int64 {
		t.Fatalf("indices dtype %s", idx.DType)
	}
	wantVals := []float64{3, 1, 1, 0, 0, 0}
	wantIdx := []float64{0, 1, 1, 0, 0, 0}
	for i := range wantVals {
		if vals.Data[i] != wantVals[i] || idx.Data[i] != wantIdx[i] {
			t.Fatalf("element %d: got (%v, %v) want (%v, %v)", i, vals.Data[i], idx.Data[i], wantVals[i], wantIdx[i])
		}
	}
	if resp.Plan != nil {
		t.Fatalf("scans carry no plan")
	}
}

func TestInvokeErrors(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	rec := doJSON(t, e, http.MethodPost, "/v1/ops/nope/invoke", `{"inputs":[]}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/v1/ops/relu/invoke", `{"inputs":[{"dtype":"float32","shape":[3],"data":[1]}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short data, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/v1/ops/relu/invoke", `{"inputs":[{"shape":[3]}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing dtype, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestListOpsAndPlatforms(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	opsRec := doJSON(t, e, http.MethodGet, "/v1/ops", "")
	opsList := decodeBody[ListResponse[OpInfo]](t, opsRec)
	if len(opsList.Data) != 24 {
		t.Fatalf("expected 24 ops, got %d", len(opsList.Data))
	}
	if opsList.Data[0].Name != "axpy" || opsList.Data[0].Kind != "elementwise" {
		t.Fatalf("unexpected first op %+v", opsList.Data[0])
	}

	platRec := doJSON(t, e, http.MethodGet, "/v1/platforms", "")
	if !strings.Contains(platRec.Body.String(), `"name":"ascend910b"`) {
		t.Fatalf("platform list missing ascend910b: %s", platRec.Body.String())
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	e := newTestEcho(tiling.DefaultConfig())
	rec := doJSON(t, e, http.MethodGet, "/v1/version", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("version status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"blob_major":1`) {
		t.Fatalf("version missing blob_major: %s", rec.Body.String())
	}
}
