package smoke

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// runSlow executes the alert lifecycle scenarios. A WebSocket capture
// session runs in the background for the whole suite; the secondary
// user created up front serves the cross-principal escalation flow.
// Unlike the CRUD scenarios these build on each other: a failed create
// leaves the dependent scenario to fail with its own missing-resource
// error, still isolated per check.
func (r *Runner) runSlow(ctx context.Context) error {
	capture := StartCapture(ctx, r.cfg.WSEndpoint, 3, r.cfg.CaptureTimeout, r.logger)

	// The secondary user is load-bearing for the escalation flow, so
	// failing to create it aborts the suite rather than poisoning half
	// the scenarios.
	user, username, err := r.createTestUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to create secondary user: %w", err)
	}

	r.Check("create_sla_config", func() error { return r.createSLAConfig(ctx) })
	r.Check("create_template", func() error { return r.createNotificationTemplate(ctx) })
	r.Check("create_channel", func() error { return r.createWebhookChannel(ctx) })
	r.Check("create_rule_and_bind", func() error { return r.createRuleAndBind(ctx) })
	r.Check("alert_firing_history", func() error { return r.waitForAlertStatus(ctx, "firing", true) })
	r.Check("webhook_firing_delivery", func() error { return r.waitForDeliveries(ctx, 1) })

	// A ticket created mid-capture must surface as a push notification.
	r.Check("ticket_ws_emit", func() error { return r.createTicketForPush(ctx) })

	r.state.SetFiring(false)
	r.Check("alert_resolved_history", func() error { return r.waitForAlertStatus(ctx, "resolved", false) })
	r.Check("webhook_resolved_delivery", func() error { return r.waitForDeliveries(ctx, 2) })

	r.logger.Info("⏳ waiting out the SLA response window (%v)...\n", r.cfg.BreachWait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.cfg.BreachWait):
	}

	r.Check("sla_breach_check", func() error { return r.slaBreachCheck(ctx) })
	r.Check("websocket_notifications", func() error { return r.verifyCapture(capture) })

	r.Check("oncall_flow", func() error { return r.oncallFlow(ctx) })
	r.Check("correlation_flow", func() error { return r.correlationFlow(ctx) })
	r.Check("escalation_flow", func() error { return r.escalationFlow(ctx, user, username) })
	r.Check("sla_reads", func() error { return r.slaReads(ctx) })

	return nil
}

// createTestUser provisions the secondary principal and logs in as it.
func (r *Runner) createTestUser(ctx context.Context) (*AuthContext, string, error) {
	username := "it_user_" + shortID()
	password := "pass1234"
	create, err := r.client.Call(ctx, http.MethodPost, "/users", map[string]interface{}{
		"username": username,
		"password": password,
		"email":    "it@example.com",
		"role":     "user",
		"status":   1,
	}, r.admin)
	if err != nil {
		return nil, "", err
	}
	r.resources.Put(KindUser, create.ID())

	user, err := r.client.Login(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	return user, username, nil
}

// createSLAConfig installs a one-minute SLA policy for warning alerts.
// Priority 999 makes it win over any seeded policy of the same
// severity, so the firing alert is guaranteed to breach within the run.
func (r *Runner) createSLAConfig(ctx context.Context) error {
	create, err := r.client.Call(ctx, http.MethodPost, "/sla/configs", map[string]interface{}{
		"name":                 "IT-SLA-" + shortID(),
		"severity":             "warning",
		"response_time_mins":   1,
		"resolution_time_mins": 1,
		"priority":             999,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if id == "" {
		return Assertf("SLA config create returned no id")
	}
	r.resources.Put(KindSLAConfig, id)
	return nil
}

func (r *Runner) createNotificationTemplate(ctx context.Context) error {
	create, err := r.client.Call(ctx, http.MethodPost, "/templates", map[string]interface{}{
		"name":        "IT-Template-" + shortID(),
		"description": "integration template",
		"content":     "rule={{ruleName}} severity={{severity}}",
		"variables":   map[string]interface{}{"ruleName": "Rule Name", "severity": "Severity"},
		"type":        "markdown",
		"status":      1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if id == "" {
		return Assertf("template create returned no id")
	}
	r.resources.Put(KindTemplate, id)
	return nil
}

func (r *Runner) createWebhookChannel(ctx context.Context) error {
	create, err := r.client.Call(ctx, http.MethodPost, "/channels", map[string]interface{}{
		"name":        "IT-Channel-" + shortID(),
		"type":        "webhook",
		"description": "integration test webhook",
		"config":      map[string]interface{}{"url": r.webhookURL()},
		"group_id":    r.groupID,
		"status":      1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if id == "" {
		return Assertf("channel create returned no id")
	}
	r.resources.Put(KindChannel, id)
	return nil
}

// createRuleAndBind installs an enabled rule querying the metrics stub
// and binds it to the webhook channel. The one-second for_duration and
// the stub's constant sample make it fire on the first evaluation
// cycle.
func (r *Runner) createRuleAndBind(ctx context.Context) error {
	templateID, ok := r.resources.Get(KindTemplate)
	if !ok {
		return Assertf("no template available to attach to the rule")
	}
	channelID, ok := r.resources.Get(KindChannel)
	if !ok {
		return Assertf("no channel available to bind to the rule")
	}

	create, err := r.client.Call(ctx, http.MethodPost, "/alert-rules", map[string]interface{}{
		"name":                        "IT-Rule-" + shortID(),
		"description":                 "integration test rule",
		"expression":                  "up",
		"evaluation_interval_seconds": 60,
		"for_duration":                1,
		"severity":                    "warning",
		"labels":                      map[string]interface{}{"env": "it"},
		"annotations":                 map[string]interface{}{"summary": "integration test"},
		"group_id":                    r.groupID,
		"template_id":                 templateID,
		"data_source_type":            "prometheus",
		"data_source_url":             r.metricsURL(),
		"status":                      1,
		"effective_start_time":        "00:00",
		"effective_end_time":          "23:59",
		"exclusion_windows":           []interface{}{},
	}, r.admin)
	if err != nil {
		return err
	}
	ruleID := create.ID()
	if ruleID == "" {
		return Assertf("rule create returned no id")
	}
	r.resources.Put(KindRule, ruleID)

	_, err = r.client.Call(ctx, http.MethodPost, "/alert-rules/"+ruleID+"/bindings", map[string]interface{}{
		"channel_ids": []interface{}{channelID},
	}, r.admin)
	return err
}

// waitForAlertStatus polls alert history until the rule's alert shows
// the wanted status. The firing wait additionally snapshots the row for
// the correlation, escalation, and SLA scenarios.
func (r *Runner) waitForAlertStatus(ctx context.Context, status string, snapshot bool) error {
	ruleID, ok := r.resources.Get(KindRule)
	if !ok {
		return Assertf("no rule available to observe")
	}

	return r.poller.Wait(ctx, status+" alert history", func(ctx context.Context) (bool, error) {
		list, err := r.client.Call(ctx, http.MethodGet, "/alert-history", nil, r.admin)
		if err != nil {
			return false, err
		}
		for _, row := range list.Rows() {
			if stringField(row, "rule_id") == ruleID && stringField(row, "status") == status {
				if snapshot {
					r.alert = AlertSnapshot{
						ID:          stringField(row, "id"),
						RuleID:      ruleID,
						Fingerprint: stringField(row, "fingerprint"),
						Status:      status,
					}
				}
				return true, nil
			}
		}
		return false, nil
	})
}

// waitForDeliveries polls the local delivery log of the webhook stub.
func (r *Runner) waitForDeliveries(ctx context.Context, min int) error {
	return r.poller.Wait(ctx, fmt.Sprintf("webhook delivery (>=%d)", min), func(ctx context.Context) (bool, error) {
		return r.state.DeliveryCount() >= min, nil
	})
}

func (r *Runner) createTicketForPush(ctx context.Context) error {
	_, err := r.client.Call(ctx, http.MethodPost, "/tickets", map[string]interface{}{
		"title":         "IT-Ticket-" + shortID(),
		"description":   "ws ticket",
		"priority":      "low",
		"assignee_name": r.cfg.AdminUser,
	}, r.admin)
	return err
}

// slaBreachCheck forces a breach evaluation pass and asserts that at
// least one breach record materialized.
func (r *Runner) slaBreachCheck(ctx context.Context) error {
	if _, err := r.client.Call(ctx, http.MethodPost, "/sla/breaches/check", nil, r.admin); err != nil {
		return err
	}
	list, err := r.client.Call(ctx, http.MethodGet, "/sla/breaches", nil, r.admin)
	if err != nil {
		return err
	}
	if len(list.Rows()) == 0 {
		return Assertf("expected SLA breach record")
	}
	return nil
}

// verifyCapture joins the background WebSocket session and asserts
// that both an alert and a ticket notification were pushed.
func (r *Runner) verifyCapture(capture *Capture) error {
	transcript := capture.Wait()
	if transcript.Unavailable {
		return Assertf("websocket channel unavailable")
	}
	if len(transcript.Messages) == 0 {
		return Assertf("no websocket messages captured")
	}
	if !transcript.Contains(`"type":"alert"`) {
		return Assertf("missing alert websocket message")
	}
	if !transcript.Contains(`"type":"ticket"`) {
		return Assertf("missing ticket websocket message")
	}
	return nil
}

// oncallFlow exercises the whole on-call surface on a throwaway
// schedule: membership, rotation generation, lookups, shift planning,
// coverage analysis, and deletion.
func (r *Runner) oncallFlow(ctx context.Context) error {
	now := time.Now().UTC()
	sched, err := r.client.Call(ctx, http.MethodPost, "/oncall/schedules", map[string]interface{}{
		"name":           "IT-Schedule-" + shortID(),
		"description":    "integration schedule",
		"timezone":       "UTC",
		"rotation_type":  "weekly",
		"rotation_start": now.Format(time.RFC3339),
	}, r.admin)
	if err != nil {
		return err
	}
	schedID := sched.ID()
	if schedID == "" {
		return Assertf("schedule create returned no id")
	}
	r.resources.Put(KindSchedule, schedID)

	if _, err := r.client.Call(ctx, http.MethodPost, "/oncall/schedules/"+schedID+"/members", map[string]interface{}{
		"user_id":  r.adminUserID,
		"username": r.cfg.AdminUser,
		"priority": 1,
	}, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodGet, "/oncall/schedules/"+schedID+"/members", nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/oncall/schedules/"+schedID+"/generate-rotations", map[string]interface{}{
		"end_time": now.Add(24 * time.Hour).Format(time.RFC3339),
	}, r.admin); err != nil {
		return err
	}
	for _, path := range []string{
		"/oncall/schedules/" + schedID + "/assignments",
		"/oncall/current",
		"/oncall/who",
		"/oncall/report",
	} {
		if _, err := r.client.Call(ctx, http.MethodGet, path, nil, r.admin); err != nil {
			return err
		}
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/oncall/schedules/"+schedID+"/generate", map[string]interface{}{
		"start_time":     now.Format(time.RFC3339),
		"end_time":       now.Add(2 * time.Hour).Format(time.RFC3339),
		"shift_duration": 60,
		"timezone":       "UTC",
	}, r.admin); err != nil {
		return err
	}
	for _, path := range []string{
		"/oncall/schedules/" + schedID + "/coverage",
		"/oncall/schedules/" + schedID + "/suggest",
		"/oncall/schedules/" + schedID + "/validate",
	} {
		if _, err := r.client.Call(ctx, http.MethodGet, path, nil, r.admin); err != nil {
			return err
		}
	}
	return r.deleteQuietly(ctx, "/oncall/schedules/"+schedID, KindSchedule)
}

// deleteQuietly removes a resource inline and drops its registration
// so cleanup does not retry it.
func (r *Runner) deleteQuietly(ctx context.Context, path string, kind ResourceKind) error {
	if _, err := r.client.Call(ctx, http.MethodDelete, path, nil, r.admin); err != nil {
		return err
	}
	r.resources.Drop(kind)
	return nil
}

// correlationFlow drives every correlation read against the alert
// observed during the firing phase.
func (r *Runner) correlationFlow(ctx context.Context) error {
	if r.alert.ID == "" {
		return Assertf("no firing alert observed to correlate")
	}
	paths := []string{
		"/correlation/analyze/" + r.alert.ID + "?window_minutes=30",
		"/correlation/patterns?hours=1&min_occurrences=1",
		"/correlation/groups?hours=1&threshold=0.5",
	}
	if r.alert.Fingerprint != "" {
		paths = append(paths, "/correlation/timeline/"+url.PathEscape(r.alert.Fingerprint)+"?hours=1")
	}
	paths = append(paths,
		"/correlation/flapping?rule_id="+r.alert.RuleID+"&hours=1&threshold=1",
		"/correlation/predict/"+r.alert.RuleID+"?hours=1",
	)
	for _, path := range paths {
		if _, err := r.client.Call(ctx, http.MethodGet, path, nil, r.admin); err != nil {
			return err
		}
	}
	return nil
}

// escalationFlow hands the observed alert to the secondary user twice,
// accepting and resolving the first escalation and rejecting the
// second, then reads the escalation listings.
func (r *Runner) escalationFlow(ctx context.Context, user *AuthContext, username string) error {
	if r.alert.ID == "" {
		return Assertf("no firing alert observed to escalate")
	}
	userID, ok := r.resources.Get(KindUser)
	if !ok {
		return Assertf("no secondary user available")
	}

	first, err := r.client.Call(ctx, http.MethodPost, "/escalations", map[string]interface{}{
		"alert_id":    r.alert.ID,
		"to_user_id":  userID,
		"to_username": username,
		"reason":      "integration test",
	}, r.admin)
	if err != nil {
		return err
	}
	firstID := first.ID()
	if firstID == "" {
		return Assertf("escalation create returned no id")
	}

	if _, err := r.client.Call(ctx, http.MethodGet, "/escalations/pending", nil, user); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/escalations/"+firstID+"/accept", nil, user); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/escalations/"+firstID+"/resolve", nil, r.admin); err != nil {
		return err
	}

	second, err := r.client.Call(ctx, http.MethodPost, "/escalations", map[string]interface{}{
		"alert_id":    r.alert.ID,
		"to_user_id":  userID,
		"to_username": username,
		"reason":      "integration reject",
	}, r.admin)
	if err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/escalations/"+second.ID()+"/reject", nil, user); err != nil {
		return err
	}

	for _, path := range []string{
		"/escalations/alert/" + r.alert.ID,
		"/escalations",
		"/escalations/stats",
	} {
		if _, err := r.client.Call(ctx, http.MethodGet, path, nil, r.admin); err != nil {
			return err
		}
	}
	return nil
}

// slaReads fetches the per-alert SLA status and the aggregate report.
func (r *Runner) slaReads(ctx context.Context) error {
	if r.alert.ID != "" {
		if _, err := r.client.Call(ctx, http.MethodGet, "/sla/alerts/"+r.alert.ID, nil, r.admin); err != nil {
			return err
		}
	}
	_, err := r.client.Call(ctx, http.MethodGet, "/sla/report", nil, r.admin)
	return err
}
