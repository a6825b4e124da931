// openrouter-stub is a local OpenRouter-compatible chat-completions server
// with canned replies per pipeline stage, keyed on the system prompt. Point
// OPENROUTER_BASE_URL at it to exercise the live code paths offline.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8091"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys := ""
		if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
			sys = req.Messages[0].Content
		}

		var content string
		switch {
		case strings.Contains(sys, "intake specialist"):
			content = jsonString(map[string]any{
				"raw_brief": "",
				"family": map[string]any{
					"surname":  "Tester",
					"siblings": []string{"Nora"},
				},
				"preferences": map[string]any{
					"style_lanes":        []string{"literary", "nature"},
					"length_pref":        "short-to-medium",
					"nickname_tolerance": "medium",
				},
				"region":   []string{"US"},
				"comments": "Canned profile from openrouter-stub.",
			})
		case strings.Contains(sys, "name generator"):
			content = jsonString([]map[string]any{
				{"name": "Beatrice", "lane": "literary", "rationale": "Dante's guide; wears well.", "theme_links": []string{}},
				{"name": "Wren", "lane": "nature", "rationale": "Small bird, big character.", "theme_links": []string{}},
				{"name": "Clara", "lane": "traditional feminine", "rationale": "Bright and clear.", "theme_links": []string{}},
			})
		case strings.Contains(sys, "name researcher"):
			content = jsonString(map[string]any{
				"name":      "Beatrice",
				"ipa":       "/Beatrice/",
				"syllables": 3,
				"meaning":   "She who brings happiness.",
				"origins":   []string{"Latin"},
			})
		case strings.Contains(sys, "expert selector"):
			content = jsonString(map[string]any{
				"finalists": []map[string]any{
					{"name": "Beatrice", "why": "Literary depth with friendly nicknames."},
					{"name": "Wren", "why": "Crisp one-syllable contrast to the surname."},
				},
				"near_misses": []map[string]any{
					{"name": "Clara", "reason": "Lovely but close in feel to a sibling name."},
				},
			})
		case strings.Contains(sys, "sanity checker"):
			content = jsonString(map[string]any{
				"overall_pass":   true,
				"flagged_names":  []any{},
				"approved_names": []string{"Beatrice", "Wren"},
				"notes":          "No conflicts with the brief detected.",
			})
		case strings.Contains(sys, "report writer"):
			content = "# Your Name Consultation\n\nWe focused on literary and nature lanes that sit well beside the surname.\n\n## Finalists\n\n- Beatrice\n- Wren\n"
		default:
			http.Error(w, "unexpected system prompt", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})

	log.Printf("openrouter-stub listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func jsonString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
