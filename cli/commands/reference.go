package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/ui"
)

const templatesReference = `# dwq templates

Every template wraps the query built from the clause flags as the common
table expression **x** and runs an outer query over it:

` + "```sql" + `
WITH x AS (
    SELECT ... FROM ... WHERE ...
)
SELECT count(1) AS n FROM x
` + "```" + `

| Template | Arguments | Result |
|---|---|---|
| len | | row count |
| cols | | column names |
| top | | first row |
| head | [n] | first n rows |
| dist | [columns...] | distinct row or combination count |
| mimx | column | minimum and maximum |
| valc | columns... | count per combination, ` + "`--agg`" + ` for more aggregates |
| piv | --index --columns | value count as a matrix |
| five | column | min, quartiles, max |
| pct | column p... | continuous percentiles |
| bin | column [n] | equal-width histogram |
| hash | [columns...] | order-independent checksum |

## Dialects

- **sqlite**: percentiles through window functions (sqlite 3.25 or later)
- **postgres**: native percentile_cont
- **oracle**: native percentile_cont, parallel hint on every select, rownum row limits
- **mysql**: percentiles through window functions (mysql 8)

Add ` + "`--print`" + ` to any template to see the SQL without running it.
`

func newTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "Describe the summary templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.PrintMarkdown(templatesReference)
		},
	}
}
