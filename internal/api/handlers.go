package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/tracker"
)

func (s *Server) health(c *fiber.Ctx) error {
	return Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
}

func (s *Server) getProgress(c *fiber.Ctx) error {
	p, err := s.svc.Get(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return Success(c, fiber.StatusOK, p)
}

func (s *Server) createProgress(c *fiber.Ctx) error {
	var in tracker.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return &progress.ValidationError{Field: "body", Reason: err.Error()}
	}
	p, err := s.svc.Create(c.UserContext(), currentUser(c), in)
	if p == nil && err != nil {
		return err
	}
	return Written(c, fiber.StatusCreated, p, err)
}

func (s *Server) stats(c *fiber.Ctx) error {
	st, err := s.svc.Stats(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	return Success(c, fiber.StatusOK, st)
}

func (s *Server) day(c *fiber.Ctx) error {
	d, err := s.svc.Day(c.UserContext(), currentUser(c), c.Params("date"))
	if err != nil {
		return err
	}
	return Success(c, fiber.StatusOK, d)
}

// updateProblemBody is the PUT payload. Date and number come from the path.
type updateProblemBody struct {
	Completed bool    `json:"completed"`
	Link      *string `json:"link"`
}

func (s *Server) updateProblem(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil {
		return &progress.ValidationError{Field: "problemNumber", Reason: "must be an integer"}
	}
	var body updateProblemBody
	if err := c.BodyParser(&body); err != nil {
		return &progress.ValidationError{Field: "body", Reason: err.Error()}
	}

	pr, err := s.svc.UpdateProblem(c.UserContext(), currentUser(c), tracker.UpdateInput{
		Date:          c.Params("date"),
		ProblemNumber: number,
		Completed:     body.Completed,
		Link:          body.Link,
	})
	if err != nil && pr.ID == 0 {
		return err
	}
	return Written(c, fiber.StatusOK, pr, err)
}

// week serves ?start=&end=. With neither given it returns the current
// Monday-to-Sunday week; with only start it returns seven days from start.
func (s *Server) week(c *fiber.Ctx) error {
	start, end := c.Query("start"), c.Query("end")
	switch {
	case start == "" && end == "":
		days := calendar.WeekOf(s.svc.Today())
		start, end = calendar.Key(days[0]), calendar.Key(days[len(days)-1])
	case start == "":
		return &progress.ValidationError{Field: "start", Reason: "is required when end is given"}
	case end == "":
		from, err := calendar.Parse(start)
		if err != nil {
			return &progress.ValidationError{Field: "start", Reason: err.Error()}
		}
		end = calendar.Key(calendar.AddDays(from, 6))
	}

	days, err := s.svc.WeekProgress(c.UserContext(), currentUser(c), start, end)
	if err != nil {
		return err
	}
	return Success(c, fiber.StatusOK, days)
}

// month serves ?year=&month= with a zero-based month. Missing values default
// to the current month.
func (s *Server) month(c *fiber.Ctx) error {
	today := s.svc.Today()
	year, err := queryInt(c, "year", today.Year())
	if err != nil {
		return err
	}
	month0, err := queryInt(c, "month", int(today.Month())-1)
	if err != nil {
		return err
	}

	days, err := s.svc.MonthProgress(c.UserContext(), currentUser(c), year, month0)
	if err != nil {
		return err
	}
	return Success(c, fiber.StatusOK, days)
}

func (s *Server) export(c *fiber.Ctx) error {
	data, err := s.svc.Export(c.UserContext(), currentUser(c))
	if err != nil {
		return err
	}
	c.Attachment(fmt.Sprintf("grindlog-progress-%s.json", calendar.Key(s.svc.Today())))
	c.Type("json")
	return c.Send(data)
}

func (s *Server) importSnapshot(c *fiber.Ctx) error {
	p, err := s.svc.Import(c.UserContext(), currentUser(c), c.Body())
	if p == nil && err != nil {
		return err
	}
	return Written(c, fiber.StatusOK, p, err)
}

func (s *Server) repair(c *fiber.Ctx) error {
	drift, err := s.svc.Repair(c.UserContext(), currentUser(c))
	if err != nil && (drift.None() || !errors.Is(err, progress.ErrPersistence)) {
		return err
	}
	return Written(c, fiber.StatusOK, drift, err)
}

func (s *Server) activity(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	entries, err := s.svc.Activity(c.UserContext(), currentUser(c), limit)
	if err != nil {
		return err
	}
	return Success(c, fiber.StatusOK, entries)
}

// themeToday describes today's slot in the rotation.
type themeToday struct {
	Date     string        `json:"date"`
	Theme    string        `json:"theme"`
	CycleDay int           `json:"cycleDay"`
	Details  *cycle.Detail `json:"details,omitempty"`
}

func (s *Server) themeToday(c *fiber.Ctx) error {
	today := s.svc.Today()
	resp := themeToday{
		Date:     calendar.Key(today),
		Theme:    cycle.ThemeForDate(today),
		CycleDay: cycle.CycleDayForDate(today),
	}
	if d, ok := cycle.Details(resp.Theme); ok {
		resp.Details = &d
	}
	return Success(c, fiber.StatusOK, resp)
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &progress.ValidationError{Field: key, Reason: "must be an integer"}
	}
	return n, nil
}
