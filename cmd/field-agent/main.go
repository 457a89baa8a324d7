package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
	"github.com/sentinelops/mission-intel-platform/internal/offline"
)

func main() {
	apiURL := os.Getenv("MISSION_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}

	client := &apiClient{baseURL: apiURL, http: &http.Client{Timeout: 10 * time.Second}}

	root := &cobra.Command{
		Use:   "field-agent",
		Short: "Field terminal for the mission alert feed",
	}
	root.PersistentFlags().StringVar(&client.baseURL, "api", apiURL, "mission API base URL")

	root.AddCommand(newListCmd(client))
	root.AddCommand(newShowCmd(client))
	root.AddCommand(newAckCmd(client))
	root.AddCommand(newResolveCmd(client))
	root.AddCommand(newMessageCmd(client))
	root.AddCommand(newEvidenceCmd(client))
	root.AddCommand(newSessionCmd(client))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newListCmd(client *apiClient) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := client.listAlerts(status)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLEVEL\tSTATUS\tLOCATION\tTITLE")
			for _, a := range alerts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Level, a.Status, a.Location, a.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by alert status")
	return cmd
}

func newShowCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "show <alert-id>",
		Short: "Show one alert in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alert, err := client.getAlert(args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(alert, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newAckCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <alert-id>",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.patch(args[0], "ack")
		},
	}
}

func newResolveCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <alert-id>",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.patch(args[0], "resolve")
		},
	}
}

func newMessageCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "message <alert-id> <text>",
		Short: "Append a dispatch message to an alert",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.sendMessage(args[0], strings.Join(args[1:], " "))
		},
	}
}

func newEvidenceCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "evidence <alert-id> <file>",
		Short: "Attach a local file as evidence",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.uploadEvidence(args[0], args[1])
		},
	}
}

// newSessionCmd runs an interactive loop with an offline-tolerant action
// queue: while the terminal is marked offline, mutations accumulate locally
// and replay in order once connectivity is restored.
func newSessionCmd(client *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive session with offline queueing",
		RunE: func(cmd *cobra.Command, args []string) error {
			queue := offline.NewQueue(func(count int) {
				fmt.Fprintf(os.Stderr, "[%d pending]\n", count)
			})

			fmt.Println("commands: list | show <id> | ack <id> | resolve <id> | message <id> <text> | evidence <id> <file> | offline | online | pending | quit")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) == 0 {
					continue
				}

				if done := runSessionCommand(client, queue, fields); done {
					return nil
				}
			}
		},
	}
}

func runSessionCommand(client *apiClient, queue *offline.Queue, fields []string) bool {
	report := func(err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "offline":
		queue.SetConnectivity(false)
		fmt.Println("connectivity: offline, mutations will be queued")
	case "online":
		queue.SetConnectivity(true)
		fmt.Println("connectivity: online")
	case "pending":
		fmt.Printf("%d queued actions\n", queue.Pending())
	case "list":
		alerts, err := client.listAlerts("")
		if err != nil {
			report(err)
			break
		}
		for _, a := range alerts {
			fmt.Printf("%s  %-8s %-12s %s\n", a.ID, a.Level, a.Status, a.Title)
		}
	case "show":
		if len(fields) < 2 {
			fmt.Println("usage: show <id>")
			break
		}
		alert, err := client.getAlert(fields[1])
		if err != nil {
			report(err)
			break
		}
		data, _ := json.MarshalIndent(alert, "", "  ")
		fmt.Println(string(data))
	case "ack":
		if len(fields) < 2 {
			fmt.Println("usage: ack <id>")
			break
		}
		id := fields[1]
		queue.Perform(func() { report(client.patch(id, "ack")) }, false)
	case "resolve":
		if len(fields) < 2 {
			fmt.Println("usage: resolve <id>")
			break
		}
		id := fields[1]
		queue.Perform(func() { report(client.patch(id, "resolve")) }, false)
	case "message":
		if len(fields) < 3 {
			fmt.Println("usage: message <id> <text>")
			break
		}
		id, text := fields[1], strings.Join(fields[2:], " ")
		queue.Perform(func() { report(client.sendMessage(id, text)) }, false)
	case "evidence":
		if len(fields) < 3 {
			fmt.Println("usage: evidence <id> <file>")
			break
		}
		id, path := fields[1], fields[2]
		queue.Perform(func() { report(client.uploadEvidence(id, path)) }, false)
	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
	return false
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) listAlerts(status string) ([]contracts.Alert, error) {
	url := c.baseURL + "/v1/alerts"
	if status != "" {
		url += "?status=" + status
	}

	var payload struct {
		Items []contracts.Alert `json:"items"`
	}
	if err := c.getJSON(url, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *apiClient) getAlert(id string) (contracts.Alert, error) {
	var alert contracts.Alert
	err := c.getJSON(c.baseURL+"/v1/alerts/"+id, &alert)
	return alert, err
}

func (c *apiClient) patch(id, action string) error {
	req, err := http.NewRequest(http.MethodPatch, c.baseURL+"/v1/alerts/"+id+"/"+action, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *apiClient) sendMessage(id, text string) error {
	body, err := json.Marshal(map[string]any{"sender": contracts.SenderAgent, "text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/alerts/"+id+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *apiClient) uploadEvidence(id, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{
		"file_name":      info.Name(),
		"size":           info.Size(),
		"last_modified":  info.ModTime().UnixMilli(),
		"content_base64": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/alerts/"+id+"/evidence", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *apiClient) getJSON(url string, dst any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, dst)
}

func (c *apiClient) do(req *http.Request, dst any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if dst == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
