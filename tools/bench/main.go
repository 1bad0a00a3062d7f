package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// maxInFlight bounds concurrent requests per scenario.
const maxInFlight = 64

// -------------------- request stats --------------------

type APITestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	totalLatency       time.Duration
	MaxLatency         time.Duration
	MinLatency         time.Duration
	mu                 sync.Mutex
}

func (s *APITestStats) Add(success bool, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	if !success {
		s.FailedRequests++
		return
	}
	s.SuccessfulRequests++
	s.totalLatency += latency
	if latency > s.MaxLatency {
		s.MaxLatency = latency
	}
	if s.MinLatency == 0 || latency < s.MinLatency {
		s.MinLatency = latency
	}
}

func (s *APITestStats) AverageLatency() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SuccessfulRequests == 0 {
		return 0
	}
	return s.totalLatency / time.Duration(s.SuccessfulRequests)
}

func (s *APITestStats) Print(title string, took time.Duration) {
	fmt.Printf("\n=== %s ===\n", title)
	fmt.Printf("Took: %v\n", took)
	fmt.Printf("Requests: %d ok: %d failed: %d\n", s.TotalRequests, s.SuccessfulRequests, s.FailedRequests)
	fmt.Printf("Latency avg: %v max: %v min: %v\n", s.AverageLatency(), s.MaxLatency, s.MinLatency)
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(s.TotalRequests)/took.Seconds())
	}
}

// -------------------- http client --------------------

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base string
	http *http.Client
}

func (c *client) send(method, path, token string, body interface{}) (int, envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, envelope{}, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return 0, envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, envelope{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, envelope{}, err
	}
	return resp.StatusCode, env, nil
}

// timed sends a request and records it; ok decides what counts as success.
func (c *client) timed(stats *APITestStats, ok func(int) bool, method, path, token string, body interface{}) (int, envelope) {
	start := time.Now()
	code, env, err := c.send(method, path, token, body)
	stats.Add(err == nil && ok(code), time.Since(start))
	return code, env
}

type benchUser struct {
	ID    uint
	Token string
}

func (c *client) register(name string) (benchUser, error) {
	code, env, err := c.send(http.MethodPost, "/api/v1/users", "", map[string]string{
		"name":     name,
		"email":    name + "@bench.local",
		"password": "bench-password",
	})
	if err != nil {
		return benchUser{}, err
	}
	if code != http.StatusCreated {
		return benchUser{}, fmt.Errorf("register %s: %d %s", name, code, env.Message)
	}
	var data struct {
		User struct {
			ID uint `json:"id"`
		} `json:"user"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return benchUser{}, err
	}
	return benchUser{ID: data.User.ID, Token: data.AccessToken}, nil
}

func total(env envelope) int64 {
	var page struct {
		Meta struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	_ = json.Unmarshal(env.Data, &page)
	return page.Meta.TotalItems
}

// -------------------- scenarios --------------------

// runFriendRace has every other user and the hub send requests to each
// other at the same time, repeat times each. Exactly one send per pair may
// win, leaving one requesting record in one direction.
func runFriendRace(c *client, hub benchUser, others []benchUser, repeat int) bool {
	stats := &APITestStats{}
	var g errgroup.Group
	g.SetLimit(maxInFlight)
	wins := make([]int, len(others))
	var winsMu sync.Mutex
	isOK := func(code int) bool { return code == http.StatusOK || code == http.StatusBadRequest }

	start := time.Now()
	for i, other := range others {
		for r := 0; r < repeat; r++ {
			for _, dir := range [][2]benchUser{{hub, other}, {other, hub}} {
				i, from, to := i, dir[0], dir[1]
				g.Go(func() error {
					code, _ := c.timed(stats, isOK, http.MethodPost, fmt.Sprintf("/api/v1/friends/add/%d", to.ID), from.Token, nil)
					if code == http.StatusOK {
						winsMu.Lock()
						wins[i]++
						winsMu.Unlock()
					}
					return nil
				})
			}
		}
	}
	_ = g.Wait()
	stats.Print("Friend request race", time.Since(start))

	passed := true
	for i, other := range others {
		if wins[i] != 1 {
			fmt.Printf("FAIL: pair (%d,%d) had %d successful sends, want 1\n", hub.ID, other.ID, wins[i])
			passed = false
		}
	}

	_, outgoing, err1 := c.send(http.MethodGet, "/api/v1/friends/add?limit=100", hub.Token, nil)
	_, incoming, err2 := c.send(http.MethodGet, "/api/v1/friends/manage?limit=100", hub.Token, nil)
	if err1 != nil || err2 != nil {
		fmt.Println("FAIL: could not list requests:", err1, err2)
		return false
	}
	if got := total(outgoing) + total(incoming); got != int64(len(others)) {
		fmt.Printf("FAIL: hub has %d pending requests, want %d\n", got, len(others))
		passed = false
	}
	return passed
}

// runReactionRace has every user toggle "like" on one blog an odd number of
// times concurrently, so each must end up with exactly one like.
func runReactionRace(c *client, author benchUser, users []benchUser, toggles int) bool {
	code, env, err := c.send(http.MethodPost, "/api/v1/blogs", author.Token, map[string]string{
		"title":   "bench",
		"content": "reaction race",
	})
	if err != nil || code != http.StatusCreated {
		fmt.Println("FAIL: create blog:", code, env.Message, err)
		return false
	}
	var blog struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &blog); err != nil {
		fmt.Println("FAIL: decode blog:", err)
		return false
	}

	if toggles%2 == 0 {
		toggles++
	}
	stats := &APITestStats{}
	var g errgroup.Group
	g.SetLimit(maxInFlight)
	isOK := func(code int) bool { return code == http.StatusOK }
	start := time.Now()
	for _, u := range users {
		for i := 0; i < toggles; i++ {
			u := u
			g.Go(func() error {
				c.timed(stats, isOK, http.MethodPost, "/api/v1/reactions", u.Token, map[string]interface{}{
					"targetType": "Blog",
					"targetId":   blog.ID,
					"emoji":      "like",
				})
				return nil
			})
		}
	}
	_ = g.Wait()
	stats.Print("Reaction toggle race", time.Since(start))

	_, env, err = c.send(http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d", blog.ID), "", nil)
	if err != nil {
		fmt.Println("FAIL: get blog:", err)
		return false
	}
	var got struct {
		Reactions map[string]int64 `json:"reactions"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		fmt.Println("FAIL: decode summary:", err)
		return false
	}

	passed := stats.FailedRequests == 0
	if !passed {
		fmt.Printf("FAIL: %d toggles failed\n", stats.FailedRequests)
	}
	for emoji, n := range got.Reactions {
		want := int64(0)
		if emoji == "like" {
			want = int64(len(users))
		}
		if n != want {
			fmt.Printf("FAIL: summary %s = %d, want %d\n", emoji, n, want)
			passed = false
		}
	}
	return passed
}

// -------------------- entry --------------------

func intArg(i, def int) int {
	if len(os.Args) > i {
		if val, err := strconv.Atoi(os.Args[i]); err == nil && val > 0 {
			return val
		}
	}
	return def
}

func main() {
	users := intArg(1, 10)
	repeat := intArg(2, 5)

	baseURL := os.Getenv("BENCH_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := &client{base: baseURL, http: &http.Client{Timeout: 8 * time.Second}}

	fmt.Println("=== social-blog concurrency bench ===")
	fmt.Printf("Start: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Target: %s users: %d repeat: %d\n", baseURL, users, repeat)

	run := time.Now().UnixNano()
	accounts := make([]benchUser, 0, users+1)
	for i := 0; i <= users; i++ {
		u, err := c.register(fmt.Sprintf("bench%d_%d", run, i))
		if err != nil {
			fmt.Println("register failed:", err)
			os.Exit(1)
		}
		accounts = append(accounts, u)
	}

	ok := runFriendRace(c, accounts[0], accounts[1:], repeat)
	ok = runReactionRace(c, accounts[0], accounts[1:], repeat) && ok

	fmt.Println()
	if !ok {
		fmt.Println("=== invariants violated ===")
		os.Exit(1)
	}
	fmt.Println("=== all invariants held ===")
}
