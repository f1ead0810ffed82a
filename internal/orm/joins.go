package orm

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

type join struct {
	Table     string
	Condition string
}

func applyJoins(builder squirrel.SelectBuilder, joins []join) squirrel.SelectBuilder {
	for _, j := range joins {
		builder = builder.InnerJoin(fmt.Sprintf("%s ON %s", j.Table, j.Condition))
	}
	return builder
}
