// Package testutil provides testing utilities for the employee API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request kinds counted by the mock server.
const (
	KindFetchAll  = "fetch_all"
	KindFetchByID = "fetch_by_id"
	KindCreate    = "create"
	KindDelete    = "delete"
)

// BasePath is where the mock server mounts the employee collection.
const BasePath = "/api/v1/employee"

// MockResponse defines a canned response that overrides the default
// behaviour for one request kind.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Record is an employee as stored by the mock server, in upstream field names.
type Record struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"employee_name"`
	Salary *int      `json:"employee_salary"`
	Age    *int      `json:"employee_age"`
	Title  *string   `json:"employee_title"`
	Email  *string   `json:"employee_email"`
}

// MockEmployeeServer is a configurable in-memory upstream employee server.
type MockEmployeeServer struct {
	server *httptest.Server

	mu        sync.RWMutex
	records   []Record
	overrides map[string]MockResponse
	counts    map[string]int

	// DeleteConfirms controls the boolean payload of delete responses.
	DeleteConfirms bool

	LastRequestHeader http.Header
	LastDeleteName    string
}

// NewMockEmployeeServer creates a mock upstream server seeded with records.
func NewMockEmployeeServer(records ...Record) *MockEmployeeServer {
	mock := &MockEmployeeServer{
		records:        append([]Record(nil), records...),
		overrides:      make(map[string]MockResponse),
		counts:         make(map[string]int),
		DeleteConfirms: true,
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the employee collection URL of the mock server.
func (m *MockEmployeeServer) URL() string {
	return m.server.URL + BasePath
}

// Close shuts down the mock server.
func (m *MockEmployeeServer) Close() {
	m.server.Close()
}

// SetResponse makes every request of the given kind answer with resp.
func (m *MockEmployeeServer) SetResponse(kind string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[kind] = resp
}

// ClearResponse restores the default behaviour for kind.
func (m *MockEmployeeServer) ClearResponse(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.overrides, kind)
}

// SetDeleteConfirms sets the boolean payload returned by delete calls.
func (m *MockEmployeeServer) SetDeleteConfirms(confirm bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteConfirms = confirm
}

// AddRecord stores a record directly, bypassing the HTTP API.
func (m *MockEmployeeServer) AddRecord(r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
}

// Records returns a snapshot of the stored records. It is never nil, so an
// empty server answers with "data": [].
func (m *MockEmployeeServer) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]Record, 0, len(m.records))
	return append(records, m.records...)
}

// Count returns how many requests of kind the server has received.
func (m *MockEmployeeServer) Count(kind string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[kind]
}

// Reset clears all tracking counters.
func (m *MockEmployeeServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.LastRequestHeader = nil
	m.LastDeleteName = ""
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockEmployeeServer) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

func (m *MockEmployeeServer) handle(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := route(r)
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil, "no such route")
		return
	}

	m.mu.Lock()
	m.counts[kind]++
	m.LastRequestHeader = r.Header.Clone()
	override, hasOverride := m.overrides[kind]
	m.mu.Unlock()

	if hasOverride {
		writeOverride(w, override)
		return
	}

	switch kind {
	case KindFetchAll:
		writeEnvelope(w, http.StatusOK, m.Records(), "")
	case KindFetchByID:
		m.fetchByID(w, id)
	case KindCreate:
		m.create(w, r)
	case KindDelete:
		m.delete(w, r)
	}
}

func (m *MockEmployeeServer) fetchByID(w http.ResponseWriter, id uuid.UUID) {
	for _, rec := range m.Records() {
		if rec.ID == id {
			writeEnvelope(w, http.StatusOK, rec, "")
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, nil, "employee not found")
}

func (m *MockEmployeeServer) create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name   string `json:"name"`
		Salary int    `json:"salary"`
		Age    int    `json:"age"`
		Title  string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, err.Error())
		return
	}

	email := strings.ToLower(strings.ReplaceAll(input.Name, " ", ".")) + "@company.com"
	rec := Record{
		ID:     uuid.New(),
		Name:   input.Name,
		Salary: &input.Salary,
		Age:    &input.Age,
		Title:  &input.Title,
		Email:  &email,
	}
	m.AddRecord(rec)
	writeEnvelope(w, http.StatusOK, rec, "")
}

func (m *MockEmployeeServer) delete(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil, err.Error())
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastDeleteName = input.Name

	if !m.DeleteConfirms {
		writeEnvelope(w, http.StatusOK, false, "")
		return
	}

	for i, rec := range m.records {
		if rec.Name == input.Name {
			m.records = append(m.records[:i], m.records[i+1:]...)
			writeEnvelope(w, http.StatusOK, true, "")
			return
		}
	}
	writeEnvelope(w, http.StatusOK, false, "")
}

func route(r *http.Request) (kind string, id uuid.UUID, ok bool) {
	rest, found := strings.CutPrefix(r.URL.Path, BasePath)
	if !found {
		return "", uuid.Nil, false
	}
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		return KindFetchAll, uuid.Nil, true
	case rest == "" && r.Method == http.MethodPost:
		return KindCreate, uuid.Nil, true
	case rest == "" && r.Method == http.MethodDelete:
		return KindDelete, uuid.Nil, true
	case rest != "" && r.Method == http.MethodGet:
		parsed, err := uuid.Parse(rest)
		if err != nil {
			return "", uuid.Nil, false
		}
		return KindFetchByID, parsed, true
	}
	return "", uuid.Nil, false
}

func writeOverride(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	w.Header().Set("Content-Type", "application/json")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func writeEnvelope(w http.ResponseWriter, status int, data any, errMsg string) {
	body := map[string]any{
		"data":   data,
		"status": "Successfully processed request.",
	}
	if errMsg != "" {
		body["status"] = "Failed to process request."
		body["error"] = errMsg
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// NewRecord builds a fully populated record.
func NewRecord(name string, salary, age int, title string) Record {
	email := fmt.Sprintf("%s@company.com", strings.ToLower(strings.ReplaceAll(name, " ", ".")))
	return Record{
		ID:     uuid.New(),
		Name:   name,
		Salary: IntPtr(salary),
		Age:    IntPtr(age),
		Title:  StringPtr(title),
		Email:  StringPtr(email),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"data": null, "status": "Failed to process request.", "error": "Internal server error"}`,
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter string) MockResponse {
	resp := MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"data": null, "status": "Failed to process request.", "error": "Too many requests"}`,
	}
	if retryAfter != "" {
		resp.Headers = map[string]string{"Retry-After": retryAfter}
	}
	return resp
}

// NewMalformedResponse creates a 200 response whose body is not an envelope.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": [`,
	}
}
