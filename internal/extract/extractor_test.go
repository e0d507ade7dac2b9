package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/config"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

type chatRequest struct {
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	payload := map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1727000000,
		"model":   "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			},
		},
	}
	body, _ := json.Marshal(payload)
	return string(body)
}

// stubProvider answers chat completions with a record named after the
// supplier token found in the user message.
func stubProvider(t *testing.T, sawRequest *chatRequest) *httptest.Server {
	t.Helper()
	supplierRe := regexp.MustCompile(`Supplier: (\S+)`)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request decode: %v", err)
		}
		if sawRequest != nil {
			*sawRequest = req
		}

		supplier := "Unknown"
		for _, m := range req.Messages {
			if m.Role == "user" {
				if match := supplierRe.FindStringSubmatch(m.Content); match != nil {
					supplier = match[1]
				}
			}
		}

		content := fmt.Sprintf(`{"supplier_name": %q, "annual_prices": {"2027": 12.5}, "annual_quantities": {"2027": 1000}, "currency": "EUR"}`, supplier)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(completionBody(content)))
	}))
}

func testClient(serverURL string) *Client {
	return NewClient(config.LLMConfig{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		ExtractModel: "test-model",
		MaxRPS:       1000,
	}, nil, testLogger())
}

func TestExtract(t *testing.T) {
	var saw chatRequest
	server := stubProvider(t, &saw)
	defer server.Close()

	client := testClient(server.URL)

	rec, err := client.Extract(context.Background(), contracts.Document{
		Name: "alpha.txt",
		Text: "Quotation\nSupplier: Alpha\nPrice 2027: 12.50 EUR",
	})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if rec.SupplierName != "Alpha" {
		t.Errorf("SupplierName = %q", rec.SupplierName)
	}
	if rec.AnnualPrices[2027] != 12.5 || rec.AnnualVolumes[2027] != 1000 {
		t.Errorf("maps = %v %v", rec.AnnualPrices, rec.AnnualVolumes)
	}
	if rec.SourceDocument != "alpha.txt" {
		t.Errorf("SourceDocument = %q", rec.SourceDocument)
	}

	if saw.Model != "test-model" {
		t.Errorf("request model = %q", saw.Model)
	}
	if saw.Temperature != extractionTemperature {
		t.Errorf("request temperature = %v, want %v", saw.Temperature, extractionTemperature)
	}
	if saw.ResponseFormat.Type != "json_object" {
		t.Errorf("response format = %q", saw.ResponseFormat.Type)
	}
	if len(saw.Messages) != 2 || saw.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", saw.Messages)
	}
}

func TestExtractAllKeepsInputOrder(t *testing.T) {
	server := stubProvider(t, nil)
	defer server.Close()

	client := testClient(server.URL)

	docs := []contracts.Document{
		{Name: "c.txt", Text: "Supplier: Charlie"},
		{Name: "a.txt", Text: "Supplier: Alpha"},
		{Name: "b.txt", Text: "Supplier: Bravo"},
	}

	results := client.ExtractAll(context.Background(), docs)
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}

	wantOrder := []string{"Charlie", "Alpha", "Bravo"}
	for i, want := range wantOrder {
		if results[i].Err != nil {
			t.Fatalf("result %d error: %v", i, results[i].Err)
		}
		if results[i].Record.SupplierName != want {
			t.Errorf("result %d supplier = %q, want %q", i, results[i].Record.SupplierName, want)
		}
		if results[i].Document.Name != docs[i].Name {
			t.Errorf("result %d document = %q, want %q", i, results[i].Document.Name, docs[i].Name)
		}
	}
}

func TestExtractProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "bad request"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Extract(context.Background(), contracts.Document{Name: "x.txt", Text: "anything"})
	if err == nil {
		t.Fatal("expected provider error")
	}
	if !strings.Contains(err.Error(), `extract "x.txt"`) {
		t.Errorf("error %v should name the document", err)
	}
}

func TestExtractMalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("this is not JSON")))
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.Extract(context.Background(), contracts.Document{Name: "y.txt", Text: "anything"})
	if err == nil || !strings.Contains(err.Error(), "malformed extraction") {
		t.Errorf("err = %v", err)
	}
}
