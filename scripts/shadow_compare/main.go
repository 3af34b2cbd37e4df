// Command shadow_compare replays read-only requests against the Go service
// and the legacy Node timetable API and reports response differences. Used
// during cutover to confirm the port serves identical payloads.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"
)

type endpoint struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
	// IgnoreFields lists top-level JSON keys excluded from the body diff,
	// e.g. generated ids and timestamps that legitimately differ per backend.
	IgnoreFields []string `json:"ignore_fields,omitempty"`
}

type plan struct {
	Endpoints []endpoint `json:"endpoints"`
}

type result struct {
	Endpoint      endpoint
	NewStatus     int
	LegacyStatus  int
	BodyMatch     bool
	NewDuration   time.Duration
	LegacyElapsed time.Duration
	Err           error
}

func (r result) matches() bool {
	return r.Err == nil && r.NewStatus == r.LegacyStatus && r.BodyMatch
}

func main() {
	var (
		newBase    string
		legacyBase string
		planPath   string
		token      string
		timeout    time.Duration
	)

	flag.StringVar(&newBase, "new-base", "http://localhost:8080", "Go service base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000", "legacy Node API base URL")
	flag.StringVar(&planPath, "plan", filepath.Join("scripts", "shadow_compare", "endpoints.json"), "path to the endpoint plan")
	flag.StringVar(&token, "token", "", "bearer token for authenticated endpoints")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	endpoints, err := loadPlan(planPath)
	if err != nil {
		log.Fatalf("load plan: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	var breaking int
	fmt.Println("shadow compare:", newBase, "vs", legacyBase)
	for _, ep := range endpoints {
		res := compare(client, newBase, legacyBase, ep, token)
		report(res)
		if !res.matches() && ep.Critical {
			breaking++
		}
	}

	if breaking > 0 {
		fmt.Printf("%d critical endpoint(s) diverge\n", breaking)
		os.Exit(1)
	}
	fmt.Println("all critical endpoints match")
}

func loadPlan(path string) ([]endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if len(p.Endpoints) == 0 {
		return nil, fmt.Errorf("plan %s declares no endpoints", path)
	}
	return p.Endpoints, nil
}

func compare(client *http.Client, newBase, legacyBase string, ep endpoint, token string) result {
	res := result{Endpoint: ep}

	newStatus, newBody, newDur, err := fetch(client, newBase, ep, token)
	if err != nil {
		res.Err = fmt.Errorf("new: %w", err)
		return res
	}
	legacyStatus, legacyBody, legacyDur, err := fetch(client, legacyBase, ep, token)
	if err != nil {
		res.Err = fmt.Errorf("legacy: %w", err)
		return res
	}

	res.NewStatus = newStatus
	res.LegacyStatus = legacyStatus
	res.NewDuration = newDur
	res.LegacyElapsed = legacyDur
	res.BodyMatch = bodiesEqual(newBody, legacyBody, ep.IgnoreFields)
	return res
}

func fetch(client *http.Client, base string, ep endpoint, token string) (int, []byte, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(ep.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := ep.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return 0, nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, 0, err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// bodiesEqual compares payloads structurally: JSON bodies are decoded,
// ignored keys stripped at every level, and numbers normalized so 3 and
// 3.0 compare equal. Non-JSON bodies fall back to a byte compare.
func bodiesEqual(a, b []byte, ignore []string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var av, bv interface{}
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return false
	}
	strip(&av, ignore)
	strip(&bv, ignore)
	return reflect.DeepEqual(av, bv)
}

func strip(v *interface{}, ignore []string) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for _, key := range ignore {
			delete(val, key)
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := val[k]
			strip(&child, ignore)
			val[k] = child
		}
	case []interface{}:
		for i, child := range val {
			strip(&child, ignore)
			val[i] = child
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func report(res result) {
	label := "OK"
	switch {
	case res.Err != nil:
		label = "ERROR"
	case !res.matches():
		label = "DIFF"
	}
	fmt.Printf("[%-5s] %s %s", label, res.Endpoint.Method, res.Endpoint.Path)
	if res.Err != nil {
		fmt.Printf("  %v\n", res.Err)
		return
	}
	fmt.Printf("  status %d/%d  body_match=%t  %s vs %s\n",
		res.NewStatus, res.LegacyStatus, res.BodyMatch, res.NewDuration.Round(time.Millisecond), res.LegacyElapsed.Round(time.Millisecond))
}
