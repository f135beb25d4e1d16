// Package csvfile exports trending snapshots as CSV for spreadsheet
// consumers. The column set and header language follow the established
// export format.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/FranksOps/hotwatch/internal/model"
)

// header defines the CSV column order: rank, term, heat, category, tags,
// link, created time.
var header = []string{"排名", "热搜词条", "热度", "分类", "标签", "链接", "创建时间"}

// timeLayout matches the export's timestamp format.
const timeLayout = "2006-01-02 15:04:05"

// Write emits the header plus one row per item in snapshot order.
func Write(w io.Writer, result *model.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}

	for _, item := range result.Items {
		record := []string{
			strconv.Itoa(item.Rank),
			item.Word,
			strconv.Itoa(item.Heat),
			item.Category,
			strings.Join(item.Tags, ","),
			item.URL,
			item.CreatedAt.Format(timeLayout),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csvfile: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	return nil
}

// WriteFile writes the CSV export to path.
func WriteFile(path string, result *model.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvfile: %w", err)
	}
	defer f.Close()

	if err := Write(f, result); err != nil {
		return err
	}
	return f.Close()
}
