package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/urfave/cli"
)

// actionDecorator wraps a command action and returns its error unchanged;
// the actions that take arguments show their own help text when given the
// wrong number of them.
func actionDecorator(f func(*cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		if err := f(c); err != nil {
			return err
		}
		return nil
	}
}

// printRespJSON pretty-prints v as indented JSON, the same way dcrlncli
// renders every RPC response.
func printRespJSON(v interface{}) {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		fmt.Printf("unable to decode response: %v\n", err)
		return
	}
	fmt.Println(string(b))
}

// httpClient posts and gets JSON against the coordinator's HTTP façade.
type httpClient struct {
	baseURL string
}

func newHTTPClient(ctx *cli.Context) *httpClient {
	return &httpClient{baseURL: "http://" + ctx.GlobalString("rpcserver")}
}

func (c *httpClient) post(path string, req, resp interface{}) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpResp, err := http.Post(c.baseURL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d: %s", path, httpResp.StatusCode, string(body))
	}

	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(body, resp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
