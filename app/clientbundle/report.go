package clientbundle

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

func formatWeight(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " lbs"
}

// WriteReport renders a one-client progress report as PDF.
func WriteReport(w io.Writer, client *Client, coachName string, now time.Time, thresholdDays int) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, tr(client.Name)+" - generated "+now.Format("02/01/2006 15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Text(10, 15, tr("Progress report: "+client.Name))

	pdf.SetFont("Arial", "", 12)
	y := 25.0
	line := func(label, value string) {
		pdf.Text(10, y, tr(label+": "+value))
		y += 6
	}
	if coachName != "" {
		line("Coach", coachName)
	}
	if client.Email != nil {
		line("Email", *client.Email)
	}
	days := client.DaysSinceCheckin(now)
	if days == NeverCheckedInDays {
		line("Last check-in", "never")
	} else {
		line("Last check-in", fmt.Sprintf("%s (%d days ago)", client.LastCheckin.Time.Format("02/01/2006"), days))
	}
	line("Status", client.StatusLabel(now, thresholdDays))
	line("Starting weight", formatWeight(client.StartingWeight()))
	line("Current weight", formatWeight(client.CurrentWeight()))
	line("Goal weight", formatWeight(client.GoalWeight))
	if progress := client.GoalProgress(); progress != nil {
		line("Goal progress", fmt.Sprintf("%.1f %%", *progress))
	}
	if client.Notes != nil {
		y += 2
		pdf.SetXY(10, y)
		pdf.MultiCell(190, 6, tr("Notes: "+*client.Notes), "", "L", false)
		y = pdf.GetY()
	}

	y += 6
	pdf.SetXY(10, y)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(35, 8, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Weight", "1", 0, "L", true, 0, "")
	pdf.CellFormat(125, 8, "Note", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	if len(client.CheckIns) == 0 {
		pdf.CellFormat(190, 8, "No check-ins yet", "1", 1, "L", false, 0, "")
	}
	for _, checkIn := range client.CheckIns {
		note := checkIn.Note
		if checkIn.PhotoPath != "" {
			note += " [photo]"
		}
		pdf.CellFormat(35, 7, checkIn.CreatedAt.Format("02/01/2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, formatWeight(checkIn.Weight), "1", 0, "L", false, 0, "")
		pdf.CellFormat(125, 7, tr(truncate(note, 80)), "1", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func (c *ClientController) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	ok, coach := c.GetCoach(w, r)
	if !ok {
		return
	}
	client, ok := c.loadClient(w, r, coach)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if c.HandleError(WriteReport(&buf, client, coach.Name, c.now(), c.thresholdDays), w) {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("client-%d-report.pdf", client.ID)))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
