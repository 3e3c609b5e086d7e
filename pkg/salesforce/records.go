package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Account is the subset of the Salesforce Account object kept in sync.
type Account struct {
	ID          string `json:"Id" salesforce:"Id"`
	Name        string `json:"Name" salesforce:"Name"`
	Industry    string `json:"Industry" salesforce:"Industry"`
	Ownership   string `json:"Ownership" salesforce:"Ownership"`
	Description string `json:"Description" salesforce:"Description"`
}

// Contact is the subset of the Salesforce Contact object kept in sync.
type Contact struct {
	ID         string `json:"Id" salesforce:"Id"`
	AccountID  string `json:"AccountId" salesforce:"AccountId"`
	FirstName  string `json:"FirstName" salesforce:"FirstName"`
	LastName   string `json:"LastName" salesforce:"LastName"`
	Title      string `json:"Title" salesforce:"Title"`
	Department string `json:"Department" salesforce:"Department"`
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// FindAccountByID returns the Account with id, or nil when none exists.
func FindAccountByID(ctx context.Context, c Client, id string) (*Account, error) {
	soql := fmt.Sprintf(
		"SELECT Id, Name, Industry, Ownership, Description FROM Account WHERE Id = '%s' LIMIT 1",
		escapeSoql(id),
	)
	var accounts []Account
	if err := c.Query(ctx, soql, &accounts); err != nil {
		return nil, eris.Wrapf(err, "sf: find account %s", id)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return &accounts[0], nil
}

// ListContacts returns every Contact attached to an Account.
func ListContacts(ctx context.Context, c Client, accountID string) ([]Contact, error) {
	soql := fmt.Sprintf(
		"SELECT Id, AccountId, FirstName, LastName, Title, Department FROM Contact WHERE AccountId = '%s'",
		escapeSoql(accountID),
	)
	var contacts []Contact
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrapf(err, "sf: list contacts for %s", accountID)
	}
	return contacts, nil
}

// UpdateAccount updates an Account record with the given fields.
func UpdateAccount(ctx context.Context, c Client, accountID string, fields map[string]any) error {
	if accountID == "" {
		return eris.New("sf: account id is required")
	}
	if len(fields) == 0 {
		return eris.New("sf: no fields to update")
	}
	if err := c.UpdateOne(ctx, "Account", accountID, fields); err != nil {
		return eris.Wrapf(err, "sf: update account %s", accountID)
	}
	return nil
}

// InsertContacts creates Contacts under accountID in batches of 200. Results
// line up with the input; a failed batch stops the run and returns what was
// inserted so far.
func InsertContacts(ctx context.Context, c Client, accountID string, contacts []Contact) ([]CollectionResult, error) {
	if accountID == "" {
		return nil, eris.New("sf: account id is required for contacts")
	}
	var all []CollectionResult
	for start := 0; start < len(contacts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(contacts))
		records := make([]map[string]any, 0, end-start)
		for _, ct := range contacts[start:end] {
			records = append(records, contactFields(accountID, ct))
		}
		res, err := c.InsertCollection(ctx, "Contact", records)
		if err != nil {
			return all, eris.Wrapf(err, "sf: insert contacts batch %d-%d", start, end)
		}
		all = append(all, res...)
	}
	return all, nil
}

func contactFields(accountID string, ct Contact) map[string]any {
	f := map[string]any{"AccountId": accountID, "LastName": ct.LastName}
	if ct.FirstName != "" {
		f["FirstName"] = ct.FirstName
	}
	if ct.Title != "" {
		f["Title"] = ct.Title
	}
	if ct.Department != "" {
		f["Department"] = ct.Department
	}
	return f
}

// SplitName splits a display name into first and last name. Salesforce
// requires LastName, so a single word goes there.
func SplitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
