package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/intake"
)

const successBody = `{
	"score": 72,
	"verdict": "Good Fit",
	"summary": "Solid backend profile.",
	"matched_skills": ["Go"],
	"missing_skills": ["Kubernetes"],
	"suggestions": ["### Skills", "Add Kubernetes experience"]
}`

func selectedResume(t *testing.T) *intake.SelectedFile {
	t.Helper()

	selected, ok := intake.New().Select(intake.FromBytes("resume.pdf", intake.MediaTypePDF, []byte("%PDF-1.4 fake")))
	require.True(t, ok)
	return selected
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), srv.URL+"/", time.Second)
}

func TestAnalyzeSendsMultipartRequest(t *testing.T) {
	t.Parallel()

	var (
		gotPath, gotMethod, gotRequestID, gotJD, gotFilename, gotPartType string
		gotResume                                                         []byte
	)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotRequestID = r.Header.Get("X-Request-ID")

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotJD = r.FormValue("job_description")

		file, header, err := r.FormFile("resume")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = header.Filename
		gotPartType = header.Header.Get("Content-Type")
		gotResume, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, successBody)
	})

	result, err := client.Analyze(context.Background(), &Request{
		ID:             "req-1",
		Resume:         selectedResume(t),
		JobDescription: "Senior backend engineer, Go, Kubernetes",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/analyze", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "req-1", gotRequestID)
	assert.Equal(t, "Senior backend engineer, Go, Kubernetes", gotJD)
	assert.Equal(t, "resume.pdf", gotFilename)
	assert.Equal(t, intake.MediaTypePDF, gotPartType)
	assert.Equal(t, "%PDF-1.4 fake", string(gotResume))

	assert.Equal(t, 72, result.Score)
	assert.Equal(t, "Good Fit", result.Verdict)
	assert.Equal(t, []string{"Go"}, result.MatchedSkills)
	assert.Equal(t, []string{"Kubernetes"}, result.MissingSkills)
	assert.Equal(t, []Suggestion{
		{Kind: SuggestionHeader, Text: "Skills"},
		{Kind: SuggestionBullet, Text: "Add Kubernetes experience"},
	}, result.Suggestions)
}

func TestAnalyzeServerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantDetail  string
		wantMessage string
	}{
		{
			name:        "string detail is used verbatim",
			status:      http.StatusBadRequest,
			body:        `{"detail": "Unsupported file format. Please upload PDF or DOCX."}`,
			wantDetail:  "Unsupported file format. Please upload PDF or DOCX.",
			wantMessage: "Unsupported file format. Please upload PDF or DOCX.",
		},
		{
			name:        "missing detail falls back",
			status:      http.StatusInternalServerError,
			body:        `{"error": "boom"}`,
			wantMessage: FallbackMessage,
		},
		{
			name:        "structured detail falls back",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail": [{"loc": ["body", "job_description"], "msg": "field required"}]}`,
			wantMessage: FallbackMessage,
		},
		{
			name:        "non json body falls back",
			status:      http.StatusBadGateway,
			body:        `<html>Bad Gateway</html>`,
			wantMessage: FallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Analyze(context.Background(), &Request{ID: "r", Resume: selectedResume(t), JobDescription: "jd"})
			require.Error(t, err)

			var serverErr *ServerError
			require.True(t, errors.As(err, &serverErr))
			assert.Equal(t, tt.status, serverErr.StatusCode)
			assert.Equal(t, tt.wantDetail, serverErr.Detail)
			assert.Equal(t, tt.wantMessage, FailureMessage(err))
			assert.Equal(t, OutcomeServerError, Outcome(err))
		})
	}
}

func TestAnalyzeMalformedResponses(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"missing field":      `{"score": 72, "verdict": "Good Fit", "summary": "s", "matched_skills": [], "missing_skills": []}`,
		"score out of range": `{"score": 172, "verdict": "v", "summary": "s", "matched_skills": [], "missing_skills": [], "suggestions": []}`,
		"null list":          `{"score": 72, "verdict": "v", "summary": "s", "matched_skills": null, "missing_skills": [], "suggestions": []}`,
		"wrong item type":    `{"score": 72, "verdict": "v", "summary": "s", "matched_skills": [1], "missing_skills": [], "suggestions": []}`,
		"not json":           `surprise`,
		"array body":         `[]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			})

			_, err := client.Analyze(context.Background(), &Request{ID: "r", Resume: selectedResume(t), JobDescription: "jd"})
			var malformed *MalformedResponseError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, FallbackMessage, FailureMessage(err))
			assert.Equal(t, OutcomeMalformedResponse, Outcome(err))
		})
	}
}

func TestAnalyzeTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(zap.NewNop(), url, time.Second)

	_, err := client.Analyze(context.Background(), &Request{ID: "r", Resume: selectedResume(t), JobDescription: "jd"})
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr), "got %v", err)
	assert.Equal(t, FallbackMessage, FailureMessage(err))
	assert.Equal(t, OutcomeTransportError, Outcome(err))
}

func TestAnalyzeEmptyListsAreAccepted(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"score": 40, "verdict": "Needs Improvement", "summary": "s", "matched_skills": [], "missing_skills": [], "suggestions": [], "extra": true}`)
	})

	result, err := client.Analyze(context.Background(), &Request{ID: "r", Resume: selectedResume(t), JobDescription: "jd"})
	require.NoError(t, err)
	assert.Equal(t, 40, result.Score)
	assert.Empty(t, result.MatchedSkills)
	assert.NotNil(t, result.MatchedSkills)
	assert.Empty(t, result.Suggestions)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"status": "ok"}`)
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	client := New(nil, "  ", 0)
	assert.Equal(t, DefaultAPIURL, client.APIURL)
	assert.Equal(t, DefaultTimeout, client.HTTPClient.Timeout)

	client = New(nil, "https://matcher.example.com///", time.Second)
	assert.Equal(t, "https://matcher.example.com", client.APIURL)
}

func TestParseSuggestions(t *testing.T) {
	t.Parallel()

	got := ParseSuggestions([]string{"Lead bullet", "### Formatting ", "Add metrics", "###Keywords", "Use action verbs", "  ### not a header"})
	assert.Equal(t, []Suggestion{
		{Kind: SuggestionBullet, Text: "Lead bullet"},
		{Kind: SuggestionHeader, Text: "Formatting"},
		{Kind: SuggestionBullet, Text: "Add metrics"},
		{Kind: SuggestionHeader, Text: "Keywords"},
		{Kind: SuggestionBullet, Text: "Use action verbs"},
		{Kind: SuggestionBullet, Text: "  ### not a header"},
	}, got)

	assert.Empty(t, ParseSuggestions(nil))
}
