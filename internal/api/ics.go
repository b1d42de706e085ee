package api

import (
	"fmt"
	"net/http"

	ics "github.com/arran4/golang-ical"
	"github.com/go-chi/chi/v5"
)

// SeqCalendar handles GET /api/v1/sequences/{name}/calendar.ics?from=&to=
// It renders every occurrence in the requested window as an all-day event.
func (h *Handlers) SeqCalendar(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	seq, err := h.resolveSequence(r.Context(), name)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	from, err := dateParam(r, "from")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	dates, err := seq.Range(from, to, true, true)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//earthkit-time//sequence calendar//EN")
	cal.SetName(name)

	for _, d := range dates {
		event := cal.AddEvent(fmt.Sprintf("%s-%s@earthkit-time", name, d))
		event.SetSummary(name)
		event.SetAllDayStartAt(d.Time())
		event.SetAllDayEndAt(d.AddDays(1).Time())
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".ics"))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, cal.Serialize())
}
