// Package crmsync pushes an account's reconciled state to Salesforce.
package crmsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/account-engine/internal/model"
	"github.com/sells-group/account-engine/internal/reconcile"
	"github.com/sells-group/account-engine/internal/resilience"
	"github.com/sells-group/account-engine/pkg/salesforce"
)

// ErrNotLinked is returned for accounts without a Salesforce id.
var ErrNotLinked = eris.New("account is not linked to salesforce")

// Result lists the Salesforce records written ("Account:<id>", "Contact:<name>")
// and the per-record failures.
type Result = resilience.BatchResult[string]

// Syncer writes accounts to Salesforce.
type Syncer struct {
	client salesforce.Client
}

// New creates a Syncer.
func New(client salesforce.Client) *Syncer {
	return &Syncer{client: client}
}

// Sync updates the linked Account record and inserts a Contact for every
// stakeholder not already on it. Stakeholders match contacts by normalized
// full name. Failures of individual records are collected in the Result;
// only a missing link or a failed lookup aborts the run.
func (s *Syncer) Sync(ctx context.Context, acct *model.Account) (*Result, error) {
	if acct.SalesforceID == "" {
		return nil, ErrNotLinked
	}

	remote, err := salesforce.FindAccountByID(ctx, s.client, acct.SalesforceID)
	if err != nil {
		return nil, eris.Wrap(err, "crmsync: lookup account")
	}
	if remote == nil {
		return nil, eris.Errorf("crmsync: salesforce account %s not found", acct.SalesforceID)
	}

	res := &Result{}
	res.Record("Account:"+remote.ID, salesforce.UpdateAccount(ctx, s.client, remote.ID, accountFields(acct)))

	existing, err := salesforce.ListContacts(ctx, s.client, remote.ID)
	if err != nil {
		res.Fail(eris.Wrap(err, "crmsync: list contacts"))
		return res, nil
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[reconcile.Normalize(c.FullName())] = true
	}

	var pending []model.Stakeholder
	var contacts []salesforce.Contact
	for _, sh := range acct.Stakeholders {
		key := reconcile.Normalize(strings.TrimSpace(sh.Name))
		if key == "" || known[key] {
			continue
		}
		known[key] = true
		first, last := salesforce.SplitName(sh.Name)
		pending = append(pending, sh)
		contacts = append(contacts, salesforce.Contact{
			FirstName:  first,
			LastName:   last,
			Title:      sh.Title,
			Department: sh.Department,
		})
	}

	if len(contacts) > 0 {
		results, err := salesforce.InsertContacts(ctx, s.client, remote.ID, contacts)
		for i, r := range results {
			name := pending[i].Name
			if r.Success {
				res.Ok("Contact:" + name)
				continue
			}
			res.Fail(eris.Errorf("contact %s: %s", name, strings.Join(r.Errors, "; ")))
		}
		if err != nil {
			res.Fail(err)
		}
	}

	zap.L().Info("crmsync: account synced",
		zap.String("account_id", acct.ID),
		zap.String("salesforce_id", remote.ID),
		zap.Int("applied", len(res.Applied)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func accountFields(acct *model.Account) map[string]any {
	f := map[string]any{
		"Name":        acct.Name,
		"Description": summary(acct),
	}
	if acct.Vertical != "" {
		f["Industry"] = acct.Vertical
	}
	if acct.Ownership != "" {
		f["Ownership"] = acct.Ownership
	}
	return f
}

// summary is the plain-text digest written to the Account description.
func summary(acct *model.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stage: %s\n", acct.Stage)

	var active []string
	for _, t := range model.Topics {
		area := acct.BusinessAreas[t.ID]
		if area == nil || area.Irrelevant || len(area.CurrentState)+len(area.Opportunities) == 0 {
			continue
		}
		active = append(active, t.Label)
	}
	if len(active) > 0 {
		fmt.Fprintf(&b, "Business areas: %s\n", strings.Join(active, ", "))
	}

	if open := acct.OpenGaps(); len(open) > 0 {
		fmt.Fprintf(&b, "Open questions (%d):\n", len(open))
		for _, g := range open {
			fmt.Fprintf(&b, "- %s\n", g.Question)
		}
	}
	return strings.TrimSpace(b.String())
}
