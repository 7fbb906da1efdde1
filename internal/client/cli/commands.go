package cli

import (
	"context"
	"fmt"
	"os"
)

// Login authenticates with phone and password.
func (a *App) Login(ctx context.Context) error {
	phone, err := GetSimpleText(a.reader, "Enter phone number", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}
	password, err := GetSecret("Enter password", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}

	creds, err := a.session.LoginByPassword(ctx, phone, password)
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}
	printlnFn("Logged in as", creds.UserID)
	return nil
}

// LoginBySMS authenticates with phone and a one-time sms code.
func (a *App) LoginBySMS(ctx context.Context) error {
	phone, err := GetSimpleText(a.reader, "Enter phone number", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}
	code, err := GetSimpleText(a.reader, "Enter sms code", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}

	creds, err := a.session.LoginBySMSCode(ctx, phone, code)
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}
	printlnFn("Logged in as", creds.UserID)
	return nil
}

// LoginByToken authenticates with an account login token pasted from the
// web session. The token is a secret, so it is read without echo.
func (a *App) LoginByToken(ctx context.Context) error {
	token, err := GetSecret("Paste login token", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return err
	}

	creds, err := a.session.Login(ctx, token)
	if err != nil {
		printlnFn("Login failed:", err)
		return err
	}
	printlnFn("Logged in as", creds.UserID)
	return nil
}

// Restore tries to resume the persisted session.
func (a *App) Restore(ctx context.Context) error {
	if !a.session.Restore(ctx) {
		printlnFn("No restorable session; please log in.")
		return nil
	}
	printlnFn("Session restored for", a.session.UserID())
	a.engine.Fetch(ctx, false)
	return nil
}

// Status prints the live account summary: AP, drones and base counters
// derived at the current logical second.
func (a *App) Status(ctx context.Context) error {
	a.engine.Fetch(ctx, false)
	if msg := a.engine.ErrorMsg(); msg != "" {
		printlnFn(msg)
		return nil
	}
	if warn := a.engine.Warning(); warn != "" {
		printlnFn("!", warn)
	}

	snap := a.engine.Snapshot()
	if snap == nil {
		printlnFn("No data yet; try 'refresh'.")
		return nil
	}

	if snap.Status != nil {
		printlnFn(fmt.Sprintf("%s (Lv.%d)  stage %s", snap.Status.Name, snap.Status.Level, snap.Status.MainStageProgress))
	}

	ap := a.engine.AP()
	if ap.Full() {
		printlnFn(fmt.Sprintf("AP     %d/%d (full)", ap.Current, ap.Max))
	} else {
		printlnFn(fmt.Sprintf("AP     %d/%d, full in %s", ap.Current, ap.Max, fmtSecs(ap.RemainSecs)))
	}

	labor := a.engine.Labor()
	printlnFn(fmt.Sprintf("Drones %d/%d, full in %s", labor.Current, labor.Max, fmtSecs(labor.RemainSecs)))

	rec := a.engine.Recruits()
	printlnFn(fmt.Sprintf("Recruit %d complete, %d running, %d idle", rec.Complete, rec.Recruiting, rec.Idle))

	routine := a.engine.Routine()
	printlnFn(fmt.Sprintf("Tasks  daily %d/%d, weekly %d/%d",
		routine.Daily.Current, routine.Daily.Total, routine.Weekly.Current, routine.Weekly.Total))
	return nil
}

// Data prints the full derived base breakdown.
func (a *App) Data(ctx context.Context) error {
	a.engine.Fetch(ctx, false)
	if msg := a.engine.ErrorMsg(); msg != "" {
		printlnFn(msg)
		return nil
	}

	man := a.engine.Manufactures()
	printlnFn(fmt.Sprintf("Manufacturing: %d/%d across %d stations (%d running)",
		man.TotalCurrent, man.TotalCapacity, len(man.Stations), man.ActiveStations))
	for _, st := range man.Stations {
		printlnFn(fmt.Sprintf("  %-10s %3d/%3d  next %s  full %s",
			st.SlotID, st.Current, st.Capacity, fmtSecs(st.NextDoneSecs), fmtSecs(st.AllDoneSecs)))
	}

	trade := a.engine.Tradings()
	printlnFn(fmt.Sprintf("Trading: %d/%d orders (%d running)",
		trade.TotalCurrent, trade.TotalCapacity, trade.ActiveStations))

	dorm := a.engine.Dorms()
	printlnFn(fmt.Sprintf("Dorms: %d/%d resting, %d tired", dorm.Resting, dorm.Capacity, a.engine.Tired()))

	tr := a.engine.TrainingRoom()
	if tr.Active {
		printlnFn(fmt.Sprintf("Training: %s, done in %s", tr.TraineeID, fmtSecs(tr.RemainSecs)))
	} else {
		printlnFn("Training: idle")
	}

	meet := a.engine.Meeting()
	printlnFn(fmt.Sprintf("Clues: %d/%d", meet.OwnClues, meet.ClueLimit))
	return nil
}

// Refresh forces a remote snapshot fetch, bypassing the cache.
func (a *App) Refresh(ctx context.Context) error {
	a.engine.Refresh(ctx)
	if msg := a.engine.ErrorMsg(); msg != "" {
		printlnFn(msg)
		return nil
	}
	printlnFn("Snapshot refreshed.")
	return nil
}

// Roles lists the bound game roles.
func (a *App) Roles(ctx context.Context) error {
	roles, err := a.session.BindingRoles(ctx, false)
	if err != nil {
		printlnFn("error:", err)
		return err
	}
	for _, r := range roles {
		marker := " "
		if r.IsDefault {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %s  %s (%s)", marker, r.UID, r.NickName, r.ChannelName))
	}
	return nil
}

// Logout tears the session down and drops the derived data with it.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.engine.Reset()
	printlnFn("Logged out.")
	return nil
}

// fmtSecs renders a countdown as "2h30m"; negative means nothing pending.
func fmtSecs(secs int64) string {
	if secs < 0 {
		return "-"
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm%02ds", m, secs%60)
}
