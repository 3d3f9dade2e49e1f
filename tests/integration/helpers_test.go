//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

type quizInfo struct {
	ID    string
	Title string
}

type attemptInfo struct {
	AttemptID string `json:"attemptId"`
	QuizID    string `json:"quizId"`
	Questions []struct {
		QID     string   `json:"qid"`
		Type    string   `json:"type"`
		Text    string   `json:"text"`
		Options []string `json:"options,omitempty"`
	} `json:"questions"`
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func sessionHeader() string {
	return fmt.Sprintf("it-sess-%d", time.Now().UnixNano())
}

func createQuiz(t *testing.T, baseURL string) quizInfo {
	t.Helper()

	payload := map[string]any{
		"title": fmt.Sprintf("Integration Quiz %d", time.Now().UnixNano()),
		"questions": []map[string]any{
			{"type": "mcq", "text": "Capital of France?", "options": []string{"Paris", "Berlin"}, "answer": 0},
			{"type": "tf", "text": "The sky is blue.", "answer": "True"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal quiz payload: %v", err)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/quizzes", baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("create quiz request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected quiz response status: %d", resp.StatusCode)
	}

	var out struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode quiz response failed: %v", err)
	}
	if out.ID == "" {
		t.Fatalf("empty quiz id in create response")
	}

	return quizInfo{ID: out.ID, Title: out.Title}
}

func startAttempt(t *testing.T, baseURL, quizID, session string) attemptInfo {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/quizzes/%s/attempts", baseURL, quizID), nil)
	if err != nil {
		t.Fatalf("build start request: %v", err)
	}
	req.Header.Set("X-Session-ID", session)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("start attempt request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected attempt response status: %d", resp.StatusCode)
	}

	var out attemptInfo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode attempt response failed: %v", err)
	}
	if out.AttemptID == "" {
		t.Fatalf("empty attempt id in start response")
	}
	return out
}

func recordAnswer(t *testing.T, baseURL, attemptID, qid, session string, value any) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"value": value})
	if err != nil {
		t.Fatalf("marshal answer payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/v1/attempts/%s/answers/%s", baseURL, attemptID, qid), bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build answer request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", session)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("record answer request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected answer response status: %d", resp.StatusCode)
	}
}
