// Command test_integration smoke-tests a running "papersift serve".
//
//	papersift serve testdata/papers.json &
//	go run ./cmd/test_integration -url http://localhost:8080 -seed 10.1/a
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	seed := flag.String("seed", "", "DOI to use for /expand and /stream (default: top hub)")
	entity := flag.String("entity", "", "entity to use for /papers (default: top entity of the largest cluster)")
	wait := flag.Duration("wait", 2*time.Second, "time to wait for the server to come up")
	flag.Parse()

	c := &smoke{base: *baseURL, http: &http.Client{Timeout: 30 * time.Second}}
	if err := c.waitHealthy(*wait); err != nil {
		fail("health", err)
	}
	pass("health")

	var communities []struct {
		ClusterID   int      `json:"cluster_id"`
		Size        int      `json:"size"`
		TopEntities []string `json:"top_entities"`
	}
	if err := c.get("/communities", nil, &communities); err != nil {
		fail("communities", err)
	}
	pass(fmt.Sprintf("communities (%d)", len(communities)))

	var clusters map[string]int
	if err := c.get("/clusters", url.Values{"resolution": {"1.5"}}, &clusters); err != nil {
		fail("clusters", err)
	}
	pass(fmt.Sprintf("clusters at resolution 1.5 (%d papers)", len(clusters)))

	var hubs []struct {
		DOI      string `json:"doi"`
		HubScore int    `json:"hub_score"`
	}
	if err := c.get("/hubs", url.Values{"k": {"5"}}, &hubs); err != nil {
		fail("hubs", err)
	}
	pass(fmt.Sprintf("hubs (%d)", len(hubs)))

	if *entity == "" && len(communities) > 0 && len(communities[0].TopEntities) > 0 {
		*entity = communities[0].TopEntities[0]
	}
	if *entity != "" {
		var found []json.RawMessage
		if err := c.get("/papers", url.Values{"entity": {*entity}}, &found); err != nil {
			fail("papers", err)
		}
		pass(fmt.Sprintf("papers with %q (%d)", *entity, len(found)))
	}

	if *seed == "" && len(hubs) > 0 {
		*seed = hubs[0].DOI
	}
	if *seed != "" {
		var stream struct {
			Path []json.RawMessage `json:"path"`
		}
		if err := c.get("/stream", url.Values{"seed": {*seed}, "strategy": {"diverse"}}, &stream); err != nil {
			fail("stream", err)
		}
		pass(fmt.Sprintf("stream from %s (%d papers)", *seed, len(stream.Path)))

		var near struct {
			Papers []json.RawMessage `json:"papers"`
		}
		if err := c.get("/expand", url.Values{"seed": {*seed}, "hops": {"2"}}, &near); err != nil {
			fail("expand", err)
		}
		pass(fmt.Sprintf("expand from %s (%d papers)", *seed, len(near.Papers)))
	}

	// Corpora without citations answer 422 here, which is fine.
	status, err := c.status("/validate")
	if err != nil || (status != http.StatusOK && status != http.StatusUnprocessableEntity) {
		fail("validate", fmt.Errorf("status %d: %v", status, err))
	}
	pass(fmt.Sprintf("validate (status %d)", status))

	fmt.Println("All checks passed")
}

type smoke struct {
	base string
	http *http.Client
}

func (c *smoke) waitHealthy(wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		status, err := c.status("/healthz")
		if err == nil && status == http.StatusOK {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("server not healthy after %v: status %d, %v", wait, status, err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func (c *smoke) status(path string) (int, error) {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *smoke) get(path string, q url.Values, out any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	resp, err := c.http.Get(u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}

func pass(name string) {
	fmt.Printf("PASSED: %s\n", name)
}

func fail(name string, err error) {
	fmt.Printf("FAILED: %s: %v\n", name, err)
	os.Exit(1)
}
