// Package cli implements the interactive prompts of the scraper binary:
// numbered menus for picking an action and a target, and the yes/no
// confirmations the pipeline asks before destructive or resuming choices.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/catalogops/catalog-scraper/internal/models"
)

// Action is a top-level menu entry.
type Action int

const (
	ActionScrapeSupplier Action = iota + 1
	ActionComparePricing
)

var actionLabels = []string{
	"Get Product Information",
	"Compare Product Pricing",
}

// Prompter reads operator choices from a terminal. Invalid input aborts the
// prompt with an error instead of re-asking, so a scripted stdin can never
// wedge the process.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ChooseAction shows the top-level menu.
func (p *Prompter) ChooseAction() (Action, error) {
	fmt.Fprintln(p.out, "What should we do?")
	for i, label := range actionLabels {
		fmt.Fprintf(p.out, "%d : %s\n", i+1, label)
	}

	n, err := p.readChoice(len(actionLabels))
	if err != nil {
		return 0, err
	}
	return Action(n), nil
}

// ChooseSupplier shows the supplier menu and returns the chosen supplier.
func (p *Prompter) ChooseSupplier(suppliers []models.Supplier) (models.Supplier, error) {
	fmt.Fprintln(p.out, "Which supplier website should we process?")
	for i, s := range suppliers {
		fmt.Fprintf(p.out, "%d : %s\n", i+1, s.Label())
	}

	n, err := p.readChoice(len(suppliers))
	if err != nil {
		return "", err
	}
	return suppliers[n-1], nil
}

// ChooseStore shows the store menu for price comparison runs.
func (p *Prompter) ChooseStore(stores []models.Store) (models.Store, error) {
	fmt.Fprintln(p.out, "Which store should we process?")
	for i, s := range stores {
		fmt.Fprintf(p.out, "%d : %s\n", i+1, s.Label())
	}

	n, err := p.readChoice(len(stores))
	if err != nil {
		return "", err
	}
	return stores[n-1], nil
}

// Confirm asks a yes/no question, defaulting to no. Its signature matches the
// operator decision hook the pipeline checkpointer takes.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/N) ", question)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (p *Prompter) readChoice(max int) (int, error) {
	fmt.Fprint(p.out, "Enter number of choice: ")

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("failed to read choice: %w", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > max {
		return 0, fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
	}

	return n, nil
}
