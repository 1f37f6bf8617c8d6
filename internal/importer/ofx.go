package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
)

// OFXImporter parses OFX/QFX statements, both bank and credit card
// sections.
type OFXImporter struct{}

// NewOFXImporter creates an OFX importer.
func NewOFXImporter() *OFXImporter {
	return &OFXImporter{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX repairs formatting quirks banks ship in SGML-style files:
// leading blank lines, mixed-case SEVERITY values, and opening tags missing
// their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRegex.ReplaceAllString(content, "$1>")
}

// Parse reads an OFX statement and returns its transactions. A statement
// section that fails to convert is logged and skipped; the rest of the file
// still imports.
func (p *OFXImporter) Parse(_ context.Context, reader io.Reader) ([]model.NewTransaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.NewTransaction
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		account := string(stmt.BankAcctFrom.AcctID)
		currency := stmt.CurDef.String()
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convertOFX(ofxTx, account, currency))
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		account := string(stmt.CCAcctFrom.AcctID)
		currency := stmt.CurDef.String()
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, convertOFX(ofxTx, account, currency))
		}
	}

	slog.Info("Parsed OFX file", "total_transactions", len(transactions))

	if len(transactions) == 0 {
		return nil, common.ErrNoTransactions
	}
	return transactions, nil
}

// convertOFX maps one OFX transaction. OFX already uses negative amounts
// for debits, matching the store's sign convention.
func convertOFX(ofxTx ofxgo.Transaction, account, currency string) model.NewTransaction {
	amount, _ := ofxTx.TrnAmt.Float64()
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return model.NewTransaction{
		Amount:     amount,
		Currency:   currency,
		OccurredAt: ofxTx.DtPosted.Time.Format("2006-01-02T15:04"),
		Merchant:   extractMerchant(ofxTx),
		Card:       account,
	}
}

// merchantPrefixes are processor boilerplate stripped from transaction
// names.
var merchantPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractMerchant pulls the cleanest merchant name available from an OFX
// transaction, preferring PAYEE over NAME and falling back to MEMO when
// NAME is a generic word.
func extractMerchant(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range merchantPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date stamps.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
