package control

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"feedsweep/domain"
	"feedsweep/internal/oplog"
)

type Client struct{ addr string }

func NewClient(addr string) *Client { return &Client{addr: addr} }

func (c *Client) Sweep() (domain.SweepResult, error) {
	resp, err := http.Post("http://"+c.addr+"/sweep", "application/json", nil)
	if err != nil {
		return domain.SweepResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.SweepResult{}, fmt.Errorf("server error: %s", resp.Status)
	}
	var res domain.SweepResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return domain.SweepResult{}, err
	}
	return res, nil
}

func (c *Client) SetInterval(d time.Duration) (time.Duration, error) {
	body, _ := json.Marshal(map[string]interface{}{"duration": d.String()})
	resp, err := http.Post("http://"+c.addr+"/set-interval", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("server error: %s", resp.Status)
	}
	var r struct {
		Old string `json:"old"`
		New string `json:"new"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&r)
	if r.Old != "" {
		if old, err := time.ParseDuration(r.Old); err == nil {
			return old, nil
		}
	}
	return 0, nil
}

func (c *Client) SetWorkers(n int) (int, error) {
	body, _ := json.Marshal(map[string]interface{}{"workers": n})
	resp, err := http.Post("http://"+c.addr+"/set-workers", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("server error: %s", resp.Status)
	}
	var r struct {
		Old int `json:"old"`
		New int `json:"new"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&r)
	return r.Old, nil
}

func (c *Client) Logs() ([]oplog.Entry, error) {
	resp, err := http.Get("http://" + c.addr + "/logs")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server error: %s", resp.Status)
	}
	var entries []oplog.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) ClearLogs() error {
	resp, err := http.Post("http://"+c.addr+"/logs/clear", "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("server error: %s", resp.Status)
	}
	return nil
}
