package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"operia/internal/agent"
	"operia/internal/app"
	"operia/internal/config"
	"operia/internal/integration"
	"operia/internal/llm"
	"operia/internal/queue"
	"operia/internal/store"
)

const twoProposalReply = `{
  "proposals": [
    {
      "id": "p1",
      "type": "create_task",
      "title": "Fix login bug",
      "description": "OAuth flow broken on mobile",
      "evidence": ["Dana: the OAuth redirect 404s on iOS"],
      "rationale": "Blocking the release",
      "what_will_happen": "A task will be created",
      "priority": "high"
    },
    {
      "id": "p2",
      "type": "reminder",
      "title": "Update roadmap",
      "priority": "medium"
    }
  ]
}`

func newTestDeps(st store.Store, q queue.Queue, llmClient llm.Client) app.Deps {
	return app.Deps{
		Store: st,
		Queue: q,
		LLM:   llmClient,
		Config: config.Config{
			MaxUploadSize:          1024 * 1024, // 1MB for tests
			MemoryWindowDays:       7,
			ContextCacheTTLSeconds: 300,
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// expectSuccessfulRun wires the mocks for one full extraction run: model
// call, batch persistence, and the context memory write-back.
func expectSuccessfulRun(st *store.MockStore, llmClient *llm.MockClient) {
	llmClient.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(twoProposalReply, nil).Once()
	llmClient.On("ModelInfo").Return("Azure OpenAI gpt-4o")
	st.On("SaveProposalBatch", mock.Anything, mock.AnythingOfType("store.ProposalBatch")).
		Return(store.ProposalBatch{}, nil).Once()
	st.On("GetProposalBatch", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(store.ProposalBatch{Proposals: []store.Proposal{{Title: "Fix login bug"}, {Title: "Update roadmap"}}}, nil).Once()
	st.On("SaveMemoryItem", mock.Anything, mock.AnythingOfType("store.MemoryItem")).
		Return(store.MemoryItem{}, nil).Once()
}

func TestExtractHandler(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		setup         func(*store.MockStore, *llm.MockClient)
		wantStatus    int
		checkResponse func(*testing.T, *http.Response)
	}{
		{
			name: "successful extraction",
			body: `{"content": "Dana: fix the login bug by Friday", "source_type": "meeting_transcript", "source_id": "standup", "memory_context": "- [decision] ship Friday"}`,
			setup: func(st *store.MockStore, llmClient *llm.MockClient) {
				expectSuccessfulRun(st, llmClient)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result agent.ExtractionResult
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if !result.Success {
					t.Errorf("expected success, got error %q", result.Err)
				}
				if result.ProposalsCount != 2 {
					t.Errorf("expected 2 proposals, got %d", result.ProposalsCount)
				}
				if result.BatchID == nil {
					t.Error("expected a batch id")
				}
			},
		},
		{
			name:       "missing content",
			body:       `{"source_type": "manual"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown source type",
			body:       `{"content": "x", "source_type": "carrier_pigeon"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{"content":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "model failure",
			body: `{"content": "notes", "memory_context": "- [x] y"}`,
			setup: func(st *store.MockStore, llmClient *llm.MockClient) {
				llmClient.On("Complete", mock.Anything, mock.Anything, mock.Anything).
					Return("", errors.New("status 500: upstream exploded")).Once()
			},
			wantStatus: http.StatusBadGateway,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result agent.ExtractionResult
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if result.Success {
					t.Error("expected failed result")
				}
				if !strings.Contains(result.Err, "upstream exploded") {
					t.Errorf("expected upstream error in body, got %q", result.Err)
				}
			},
		},
		{
			name: "malformed model reply",
			body: `{"content": "notes", "memory_context": "- [x] y"}`,
			setup: func(st *store.MockStore, llmClient *llm.MockClient) {
				llmClient.On("Complete", mock.Anything, mock.Anything, mock.Anything).
					Return("here are your tasks!", nil).Once()
			},
			wantStatus: http.StatusBadGateway,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result agent.ExtractionResult
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if !strings.Contains(result.Err, "failed to parse response") {
					t.Errorf("expected parse error in body, got %q", result.Err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockLLM := new(llm.MockClient)

			if tt.setup != nil {
				tt.setup(mockStore, mockLLM)
			}

			deps := newTestDeps(mockStore, nil, mockLLM)
			handler := extractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

			req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, resp.StatusCode, string(body))
			}

			if tt.checkResponse != nil {
				resp.Body = io.NopCloser(bytes.NewReader(w.Body.Bytes()))
				tt.checkResponse(t, resp)
			}

			mockStore.AssertExpectations(t)
			mockLLM.AssertExpectations(t)
		})
	}
}

func TestExtractHandlerAssemblesContext(t *testing.T) {
	mockStore := new(store.MockStore)
	mockStore.On("GetMemoryItems", mock.Anything, "default", store.MemoryFilter{}).
		Return([]store.MemoryItem{
			{Type: store.MemoryDecision, Payload: map[string]any{"summary": "ship the beta on Friday"}},
		}, nil).Once()

	var capturedPrompt string
	mockLLM := new(llm.MockClient)
	mockLLM.On("Complete", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { capturedPrompt = args.String(2) }).
		Return("", errors.New("stop here")).Once()

	deps := newTestDeps(mockStore, nil, mockLLM)
	handler := extractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"content": "notes"}`))
	w := httptest.NewRecorder()
	handler(w, req)

	if !strings.Contains(capturedPrompt, "RECENT CONTEXT:") || !strings.Contains(capturedPrompt, "ship the beta on Friday") {
		t.Errorf("expected stored memory in prompt, got:\n%s", capturedPrompt)
	}
	mockStore.AssertExpectations(t)
	mockLLM.AssertExpectations(t)
}

func TestAsyncExtractHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		noQueue    bool
		setup      func(*queue.MockQueue)
		wantStatus int
	}{
		{
			name: "accepted",
			body: `{"content": "notes", "source_type": "slack_message"}`,
			setup: func(q *queue.MockQueue) {
				q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
					return task.Type == queue.TaskTypeExtract && len(task.Payload) > 0
				})).Return(nil).Once()
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "no queue configured",
			body:       `{"content": "notes"}`,
			noQueue:    true,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "missing content",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "enqueue keeps failing",
			body: `{"content": "notes"}`,
			setup: func(q *queue.MockQueue) {
				q.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("nats down")).Times(3)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueue := new(queue.MockQueue)
			if tt.setup != nil {
				tt.setup(mockQueue)
			}

			var deps app.Deps
			if tt.noQueue {
				deps = newTestDeps(new(store.MockStore), nil, new(llm.MockClient))
			} else {
				deps = newTestDeps(new(store.MockStore), mockQueue, new(llm.MockClient))
			}
			handler := asyncExtractHandler(deps)

			req := httptest.NewRequest(http.MethodPost, "/api/extract/async", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusAccepted {
				var result map[string]any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if result["task_id"] == "" || result["status"] != "queued" {
					t.Errorf("unexpected response: %v", result)
				}
			}
			mockQueue.AssertExpectations(t)
		})
	}
}

func TestUploadHandler(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		setup       func(*store.MockStore, *llm.MockClient)
		wantStatus  int
	}{
		{
			name:        "successful transcript upload",
			filename:    "standup.txt",
			contentType: "text/plain",
			content:     []byte("Dana: fix the login bug by Friday"),
			setup: func(st *store.MockStore, llmClient *llm.MockClient) {
				st.On("GetMemoryItems", mock.Anything, "default", store.MemoryFilter{}).
					Return([]store.MemoryItem{}, nil).Once()
				expectSuccessfulRun(st, llmClient)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "file too large",
			filename:    "large.txt",
			contentType: "text/plain",
			content:     make([]byte, 2*1024*1024), // 2MB
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "missing Content-Type detects from extension",
			filename:    "notes.txt",
			contentType: "",
			content:     []byte("Dana: write the Q3 report"),
			setup: func(st *store.MockStore, llmClient *llm.MockClient) {
				st.On("GetMemoryItems", mock.Anything, "default", store.MemoryFilter{}).
					Return([]store.MemoryItem{}, nil).Once()
				expectSuccessfulRun(st, llmClient)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "unsupported extension",
			filename:    "notes.docx",
			contentType: "",
			content:     []byte("content"),
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "unsupported Content-Type",
			filename:    "notes.doc",
			contentType: "application/msword",
			content:     []byte("content"),
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "empty file",
			filename:    "empty.txt",
			contentType: "text/plain",
			content:     []byte("   \n"),
			wantStatus:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockLLM := new(llm.MockClient)

			if tt.setup != nil {
				tt.setup(mockStore, mockLLM)
			}

			deps := newTestDeps(mockStore, nil, mockLLM)
			handler := uploadHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

			req, err := createMultipartRequest(tt.filename, tt.contentType, tt.content)
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}

			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			mockStore.AssertExpectations(t)
			mockLLM.AssertExpectations(t)
		})
	}

	// Test missing file separately since it requires different request setup
	t.Run("missing file", func(t *testing.T) {
		deps := newTestDeps(new(store.MockStore), nil, new(llm.MockClient))
		handler := uploadHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		req := httptest.NewRequest(http.MethodPost, "/api/transcripts/upload", nil)
		req.Header.Set("Content-Type", "multipart/form-data")
		w := httptest.NewRecorder()

		handler(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestIntegrationExtractHandler(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("notion not configured", func(t *testing.T) {
		deps := newTestDeps(new(store.MockStore), nil, new(llm.MockClient))
		deps.Notion = integration.NewNotionClient("", "", discard)
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "notion", `{"page_id": "abc"}`))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d. Body: %s", w.Code, w.Body.String())
		}
	})

	t.Run("notion not implemented", func(t *testing.T) {
		deps := newTestDeps(new(store.MockStore), nil, new(llm.MockClient))
		deps.Notion = integration.NewNotionClient("secret", "db", discard)
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "notion", `{"page_id": "abc"}`))

		if w.Code != http.StatusNotImplemented {
			t.Errorf("Expected status 501, got %d. Body: %s", w.Code, w.Body.String())
		}
	})

	t.Run("notion page runs the pipeline", func(t *testing.T) {
		mockStore := new(store.MockStore)
		mockLLM := new(llm.MockClient)
		mockNotion := new(integration.MockNotionClient)

		mockNotion.On("GetPage", mock.Anything, "abc").Return(integration.NotionPage{
			Title:   "Q3 Roadmap",
			Content: "Ship the new billing flow by October.",
		}, nil).Once()
		mockStore.On("GetMemoryItems", mock.Anything, "default", store.MemoryFilter{}).
			Return([]store.MemoryItem{}, nil).Once()
		expectSuccessfulRun(mockStore, mockLLM)

		deps := newTestDeps(mockStore, nil, mockLLM)
		deps.Notion = mockNotion
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "notion", `{"page_id": "abc"}`))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		mockNotion.AssertExpectations(t)
		mockStore.AssertExpectations(t)
		mockLLM.AssertExpectations(t)
	})

	t.Run("slack actionable messages run the pipeline", func(t *testing.T) {
		mockStore := new(store.MockStore)
		mockLLM := new(llm.MockClient)
		mockSlack := new(integration.MockSlackClient)

		mockSlack.On("ChannelMessages", mock.Anything, "C123", 50).Return([]integration.SlackMessage{
			{UserID: "U1", UserName: "dana", Text: "TODO: rotate the API keys"},
			{UserID: "U2", UserName: "sam", Text: "lunch anyone?"},
		}, nil).Once()
		mockStore.On("GetMemoryItems", mock.Anything, "default", store.MemoryFilter{}).
			Return([]store.MemoryItem{}, nil).Once()
		expectSuccessfulRun(mockStore, mockLLM)

		deps := newTestDeps(mockStore, nil, mockLLM)
		deps.Slack = mockSlack
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "slack", `{"channel_id": "C123"}`))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		mockSlack.AssertExpectations(t)
		mockStore.AssertExpectations(t)
		mockLLM.AssertExpectations(t)
	})

	t.Run("slack without actionable messages skips the model", func(t *testing.T) {
		mockLLM := new(llm.MockClient)
		mockSlack := new(integration.MockSlackClient)
		mockSlack.On("ChannelMessages", mock.Anything, "C123", 50).Return([]integration.SlackMessage{
			{UserID: "U2", UserName: "sam", Text: "lunch anyone?"},
		}, nil).Once()

		deps := newTestDeps(new(store.MockStore), nil, mockLLM)
		deps.Slack = mockSlack
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "slack", `{"channel_id": "C123"}`))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		var result agent.ExtractionResult
		if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if !result.Success || result.ProposalsCount != 0 || result.BatchID != nil {
			t.Errorf("expected empty successful result, got %+v", result)
		}
		mockLLM.AssertExpectations(t) // no model call
		mockSlack.AssertExpectations(t)
	})

	t.Run("github without issues skips the model", func(t *testing.T) {
		mockGitHub := new(integration.MockGitHubClient)
		mockGitHub.On("RepoIssues", mock.Anything, "operia/api", "open", 50).
			Return([]integration.GitHubIssue{}, nil).Once()

		deps := newTestDeps(new(store.MockStore), nil, new(llm.MockClient))
		deps.GitHub = mockGitHub
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "github", `{"repo": "operia/api"}`))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		mockGitHub.AssertExpectations(t)
	})

	t.Run("unknown provider", func(t *testing.T) {
		deps := newTestDeps(new(store.MockStore), nil, new(llm.MockClient))
		handler := integrationExtractHandler(deps, agent.New(deps.LLM, deps.Store, deps.Log))

		w := httptest.NewRecorder()
		handler(w, integrationRequestFor(t, "jira", `{}`))

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func integrationRequestFor(t *testing.T, provider, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/integrations/"+provider+"/extract", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("provider", provider)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func createMultipartRequest(filename, contentType string, content []byte) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, err
	}

	if _, err := part.Write(content); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/api/transcripts/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}
