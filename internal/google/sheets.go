package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"marafon/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const timeLayout = "2006-01-02 15:04:05"

var errRowNotFound = errors.New("payment row not found")

var (
	paymentHeaders = []interface{}{
		"Payment ID", "User ID", "Full Name", "Phone", "Course", "Amount", "Status",
		"Submitted At", "Decided At", "Admin ID", "Reason",
	}
	userHeaders = []interface{}{
		"User ID", "Phone", "Full Name", "Age", "Region", "Height", "Weight",
		"Registered At", "Course", "Amount", "Status", "Submitted At",
	}
)

// SheetsService mirrors payments and users into one spreadsheet.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	paymentsSheet string
	usersSheet    string
	location      *time.Location

	rowCache map[int64]int
	cacheMu  sync.RWMutex
}

func NewSheetsService(
	ctx context.Context,
	credentialsFile, spreadsheetID, paymentsSheet, usersSheet string,
	location *time.Location,
) (*SheetsService, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return newWithService(srv, spreadsheetID, paymentsSheet, usersSheet, location), nil
}

func newWithService(srv *sheets.Service, spreadsheetID, paymentsSheet, usersSheet string, location *time.Location) *SheetsService {
	if location == nil {
		location = time.UTC
	}
	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		paymentsSheet: paymentsSheet,
		usersSheet:    usersSheet,
		location:      location,
		rowCache:      make(map[int64]int),
	}
}

// TestConnection проверяет подключение к таблице
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.paymentsSheet+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// EnsureHeaders writes the header row of the payments sheet.
func (s *SheetsService) EnsureHeaders(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.paymentsSheet+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{paymentHeaders},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// WarmUpCache populates the row index cache by reading the payment id column.
func (s *SheetsService) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.paymentsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
	for i, row := range resp.Values {
		if id := cellID(row); id > 0 {
			s.rowCache[id] = i + 1
		}
	}
	return nil
}

// UpsertPayment updates the payment row or appends it when absent.
func (s *SheetsService) UpsertPayment(ctx context.Context, p *models.Payment) error {
	if p == nil || p.ID == 0 {
		return fmt.Errorf("payment id is required")
	}

	rowIdx, err := s.findPaymentRow(ctx, p.ID)
	if errors.Is(err, errRowNotFound) {
		return s.appendPayment(ctx, p)
	}
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:K%d", s.paymentsSheet, rowIdx, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{s.paymentRowValues(p)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *SheetsService) appendPayment(ctx context.Context, p *models.Payment) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.paymentsSheet+"!A:A", &sheets.ValueRange{
		Values: [][]interface{}{s.paymentRowValues(p)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row, ok := firstRow(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(p.ID, row)
		}
	}
	return nil
}

// ReplaceUsers overwrites the users sheet with a fresh export.
func (s *SheetsService) ReplaceUsers(ctx context.Context, rows []models.ExportRow) error {
	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.usersSheet+"!A:Z", &sheets.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear users sheet: %w", err)
	}

	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, userHeaders)
	for _, r := range rows {
		values = append(values, s.userRowValues(r))
	}

	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.usersSheet+"!A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update users sheet: %w", err)
	}
	return nil
}

func (s *SheetsService) findPaymentRow(ctx context.Context, paymentID int64) (int, error) {
	if row, ok := s.getCachedRow(paymentID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.paymentsSheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if cellID(row) == paymentID {
			rowIdx := i + 1 // Values are zero-based; sheet rows are 1-based
			s.setCachedRow(paymentID, rowIdx)
			return rowIdx, nil
		}
	}
	return 0, errRowNotFound
}

func (s *SheetsService) paymentRowValues(p *models.Payment) []interface{} {
	decidedAt, adminID, reason := "", "", ""
	if p.DecidedAt != nil {
		decidedAt = p.DecidedAt.In(s.location).Format(timeLayout)
	}
	if p.AdminID != nil {
		adminID = strconv.FormatInt(*p.AdminID, 10)
	}
	if p.RejectionReason != nil {
		reason = *p.RejectionReason
	}

	return []interface{}{
		p.ID,
		p.UserID,
		p.FullName,
		p.Phone,
		p.CourseKey,
		p.Amount,
		string(p.Status),
		p.SubmittedAt.In(s.location).Format(timeLayout),
		decidedAt,
		adminID,
		reason,
	}
}

func (s *SheetsService) userRowValues(r models.ExportRow) []interface{} {
	amount, submittedAt := "", ""
	if r.Amount != nil {
		amount = strconv.FormatInt(*r.Amount, 10)
	}
	if r.SubmittedAt != nil {
		submittedAt = r.SubmittedAt.In(s.location).Format(timeLayout)
	}
	return []interface{}{
		r.UserID, r.Phone, r.FullName, r.Age, r.Region, r.Height, r.Weight,
		r.RegisteredAt.In(s.location).Format(timeLayout),
		r.CourseKey, amount, r.Status, submittedAt,
	}
}

func (s *SheetsService) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

func cellID(row []interface{}) int64 {
	if len(row) == 0 {
		return 0
	}
	switch v := row[0].(type) {
	case float64:
		return int64(v)
	case string:
		id, _ := strconv.ParseInt(v, 10, 64)
		return id
	}
	return 0
}

var rangeRowRe = regexp.MustCompile(`![A-Z]+(\d+)`)

// firstRow extracts the first row number from an A1 range like "Sheet!A10:K10".
func firstRow(a1 string) (int, bool) {
	m := rangeRowRe.FindStringSubmatch(a1)
	if m == nil {
		return 0, false
	}
	row, err := strconv.Atoi(m[1])
	return row, err == nil
}
