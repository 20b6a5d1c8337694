package httpgin

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/service"
)

var exportHeader = []string{"Nomor", "Poli", "Status", "Waktu Ambil", "Waktu Panggil", "Loket"}

// id-ID locale time of day
const exportTimeLayout = "15.04.05"

// @Summary  Today's tickets as CSV
// @Tags     staff
// @Security BearerAuth
// @Produce  text/csv
// @Success  200 {string} string "CSV file"
// @Router   /queue/export [get]
func handleExport(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, tickets, err := svcs.Query.Export(c.Request.Context())
		if err != nil {
			respondErr(c, err, "Failed to export queues")
			return
		}

		b, err := encodeCSV(tickets, svcs.Query.Location())
		if err != nil {
			respondErr(c, err, "Failed to export queues")
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="antrian-%s.csv"`, day))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
	}
}

func encodeCSV(tickets []domain.Ticket, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	for _, t := range tickets {
		called, counter := "-", "-"
		if t.CalledAt != nil {
			called = t.CalledAt.In(loc).Format(exportTimeLayout)
		}
		if t.Counter != nil {
			counter = strconv.Itoa(*t.Counter)
		}

		if err := w.Write([]string{
			strconv.Itoa(t.Number),
			t.Clinic,
			t.Status.String(),
			t.CreatedAt.In(loc).Format(exportTimeLayout),
			called,
			counter,
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
