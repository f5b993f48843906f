// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/internal/container"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"

	"github.com/spf13/cobra"
)

var (
	// Description is the transaction description to categorize
	Description string
	// AddRule is a keyword to append to the rule table
	AddRule string
	// Category is the target category for AddRule
	Category string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize transaction descriptions with the rule table",
	Long: `Categorize matches a transaction description against the keyword rule table
and prints the category, the keyword that matched and the match confidence.

With --add-rule a new keyword rule is appended to the configured rules file
before categorizing.

Examples:
  statement-ledger categorize -d "JUICE PAYMENT TO SUPERMARKET"
  statement-ledger categorize --add-rule "netflix" --category "CARD PURCHASE" -d "NETFLIX.COM"`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&Description, "description", "d", "", "Transaction description to categorize")
	Cmd.Flags().StringVar(&AddRule, "add-rule", "", "Keyword to append to the rules file")
	Cmd.Flags().StringVar(&Category, "category", "", "Category for --add-rule")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("container not initialized")
	}

	if AddRule != "" {
		if err := AppendRule(c, AddRule, Category); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added rule %q -> %s\n", AddRule, Category)
	}

	if Description == "" {
		if AddRule == "" {
			return fmt.Errorf("a description (-d) or a rule (--add-rule) must be specified")
		}
		return nil
	}
	Categorize(c, Description, cmd.OutOrStdout())
	return nil
}

// Categorize assigns a category to description and prints the verdict.
func Categorize(c *container.Container, description string, out io.Writer) models.CategoryAssignment {
	assignment := c.GetCategorizer().Categorize(description)
	_, _ = fmt.Fprintf(out, "Category: %s\n", assignment.Category)
	if assignment.Keyword != "" {
		_, _ = fmt.Fprintf(out, "Keyword: %s\n", assignment.Keyword)
	}
	_, _ = fmt.Fprintf(out, "Confidence: %s\n", assignment.Confidence)
	return assignment
}

// AppendRule adds keyword -> category at the lowest priority, persists the
// rule table and installs it in the running engine.
func AppendRule(c *container.Container, keyword, category string) error {
	keyword = strings.TrimSpace(keyword)
	category = strings.ToUpper(strings.TrimSpace(category))
	if category == "" {
		return fmt.Errorf("--category is required with --add-rule")
	}

	engine := c.GetCategorizer()
	rules := engine.Rules()
	for _, r := range rules {
		if strings.EqualFold(r.Keyword, keyword) {
			return fmt.Errorf("a rule for keyword %q already exists (%s)", keyword, r.Category)
		}
	}
	rules = append(rules, models.CategoryRule{Keyword: keyword, Category: category})

	if err := c.GetStore().SaveRules(rules); err != nil {
		return fmt.Errorf("error saving rules: %w", err)
	}
	engine.SetRules(rules)

	c.GetLogger().Info("Added categorization rule",
		logging.Field{Key: logging.FieldKeyword, Value: keyword},
		logging.Field{Key: logging.FieldCategory, Value: category})
	return nil
}
