package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Account:
		o.printAccount(v)
	case []Account:
		o.printAccounts(v)
	case Operation:
		o.printOperations([]Operation{v})
	case []Operation:
		o.printOperations(v)
	case []Action:
		o.printActions(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player    Player    `json:"player"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Account response type
type Account struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Operation response type
type Operation struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Action response type
type Action struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%d)\n", p.Name, p.ID)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	_, _ = fmt.Fprintf(o.w, "Token: %s\n", a.Token)
	_, _ = fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printAccount(a Account) {
	_, _ = fmt.Fprintf(o.w, "Account: %d\n", a.ID)
	_, _ = fmt.Fprintf(o.w, "Balance: %s\n", a.Amount)
}

func (o *Output) printAccounts(accounts []Account) {
	if len(accounts) == 0 {
		_, _ = fmt.Fprintln(o.w, "No accounts")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tBALANCE\tUPDATED")
	for _, a := range accounts {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", a.ID, a.Amount, a.UpdatedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func (o *Output) printOperations(ops []Operation) {
	if len(ops) == 0 {
		_, _ = fmt.Fprintln(o.w, "No operations")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tACCOUNT\tTYPE\tAMOUNT\tAT")
	for _, op := range ops {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", op.ID, op.AccountID, op.Type, op.Amount, op.CreatedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func (o *Output) printActions(actions []Action) {
	if len(actions) == 0 {
		_, _ = fmt.Fprintln(o.w, "No actions")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tACTION\tSTATUS\tAT")
	for _, a := range actions {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Type, a.Status, a.CreatedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
