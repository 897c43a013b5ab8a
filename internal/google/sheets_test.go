package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marafon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func setupMockServer(ctx context.Context, t *testing.T) (*http.ServeMux, *SheetsService) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	return mux, newWithService(srv, "sheet_id", "Payments", "Users", time.UTC)
}

func testPayment() *models.Payment {
	adminID := int64(1)
	decided := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	return &models.Payment{
		ID: 42, UserID: 10, FullName: "Ali Valiyev", Phone: "+998901234567",
		CourseKey: "vip", Amount: 597000, Status: models.PaymentApproved,
		SubmittedAt: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
		DecidedAt:   &decided, AdminID: &adminID,
	}
}

func TestSheetsService_TestConnection(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Payments!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"Payment ID"}}})
	})

	assert.NoError(t, s.TestConnection(ctx))
}

func TestSheetsService_TestConnectionFails(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Payments!A1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	})

	assert.Error(t, s.TestConnection(ctx))
}

func TestSheetsService_WarmUpCache(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Payments!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{
			Values: [][]interface{}{{"Payment ID"}, {"123"}, {456.0}},
		})
	})

	require.NoError(t, s.WarmUpCache(ctx))
	row, ok := s.getCachedRow(123)
	assert.True(t, ok)
	assert.Equal(t, 2, row)
	row, _ = s.getCachedRow(456)
	assert.Equal(t, 3, row)
}

func TestSheetsService_UpsertPayment_Append(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Payments!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"Payment ID"}}})
	})

	var appended sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Payments!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&appended)
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
			Updates: &sheets.UpdateValuesResponse{UpdatedRange: "Payments!A10:K10"},
		})
	})

	require.NoError(t, s.UpsertPayment(ctx, testPayment()))

	row, ok := s.getCachedRow(42)
	assert.True(t, ok)
	assert.Equal(t, 10, row)
	require.Len(t, appended.Values, 1)
	assert.Equal(t, "approved", appended.Values[0][6])
}

func TestSheetsService_UpsertPayment_Update(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)
	s.setCachedRow(42, 5)

	called := false
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Payments!A5:K5", func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPut, r.Method)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	require.NoError(t, s.UpsertPayment(ctx, testPayment()))
	assert.True(t, called)
}

func TestSheetsService_UpsertPayment_RequiresID(t *testing.T) {
	s := &SheetsService{rowCache: map[int64]int{}}
	assert.Error(t, s.UpsertPayment(context.Background(), &models.Payment{}))
	assert.Error(t, s.UpsertPayment(context.Background(), nil))
}

func TestSheetsService_ReplaceUsers(t *testing.T) {
	ctx := context.Background()
	mux, s := setupMockServer(ctx, t)

	cleared := false
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Users!A:Z:clear", func(w http.ResponseWriter, r *http.Request) {
		cleared = true
		_ = json.NewEncoder(w).Encode(sheets.ClearValuesResponse{})
	})

	var written sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/sheet_id/values/Users!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&written)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})

	rows := []models.ExportRow{
		{UserID: 10, FullName: "Ali", RegisteredAt: time.Now()},
		{UserID: 11, FullName: "Vali", RegisteredAt: time.Now()},
	}
	require.NoError(t, s.ReplaceUsers(ctx, rows))

	assert.True(t, cleared)
	require.Len(t, written.Values, 3)
	assert.Equal(t, "User ID", written.Values[0][0])
	assert.Equal(t, "Vali", written.Values[2][2])
}

func TestPaymentRowValues(t *testing.T) {
	s := newWithService(nil, "id", "Payments", "Users", time.FixedZone("UZT", 5*60*60))
	reason := "Summa noto'g'ri"
	p := testPayment()
	p.Status = models.PaymentRejected
	p.RejectionReason = &reason

	values := s.paymentRowValues(p)
	assert.Equal(t, int64(42), values[0])
	assert.Equal(t, "rejected", values[6])
	assert.Equal(t, "2026-04-02 13:00:00", values[7])
	assert.Equal(t, "2026-04-02 14:00:00", values[8])
	assert.Equal(t, "1", values[9])
	assert.Equal(t, reason, values[10])
}

func TestFirstRow(t *testing.T) {
	row, ok := firstRow("Payments!A10:K10")
	assert.True(t, ok)
	assert.Equal(t, 10, row)

	_, ok = firstRow("garbage")
	assert.False(t, ok)
}
