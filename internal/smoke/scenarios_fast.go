package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// runFast executes the resource CRUD scenarios. Every scenario cleans
// up its own resources inline; nothing outlives the suite.
func (r *Runner) runFast(ctx context.Context) {
	r.Check("templates_crud", func() error { return r.templatesCRUD(ctx) })
	r.Check("channels_webhook", func() error { return r.channelsWebhook(ctx) })
	r.Check("channels_lark", func() error { return r.channelsLark(ctx) })
	r.Check("channels_telegram", func() error { return r.channelsTelegram(ctx) })
	r.Check("data_sources_crud", func() error { return r.dataSourcesCRUD(ctx) })
	r.Check("silences_crud", func() error { return r.silencesCRUD(ctx) })
	r.Check("tickets_crud", func() error { return r.ticketsCRUD(ctx) })
	r.Check("users_crud", func() error { return r.usersCRUD(ctx) })
	r.Check("batch_import_export", func() error { return r.batchImportExport(ctx) })
	r.Check("misc_reads", func() error { return r.miscReads(ctx) })
}

func (r *Runner) templatesCRUD(ctx context.Context) error {
	create, err := r.client.Call(ctx, http.MethodPost, "/templates", map[string]interface{}{
		"name":        "IT-Template-" + shortID(),
		"description": "integration template",
		"content":     "hello {{ruleName}}",
		"variables":   map[string]interface{}{"ruleName": "Rule Name"},
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
	if _, err := r.client.Call(ctx, http.MethodGet, "/templates/"+id, nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPut, "/templates/"+id, map[string]interface{}{
		"description": "updated",
	}, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodDelete, "/templates/"+id, nil, r.admin)
	return err
}

func (r *Runner) channelsWebhook(ctx context.Context) error {
	config := map[string]interface{}{"url": r.webhookURL()}
	create, err := r.client.Call(ctx, http.MethodPost, "/channels", map[string]interface{}{
		"name":        "IT-Webhook-" + shortID(),
		"type":        "webhook",
		"description": "integration webhook",
		"config":      config,
		"group_id":    r.groupID,
		"status":      1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodGet, "/channels/"+id, nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPut, "/channels/"+id, map[string]interface{}{
		"description": "updated",
	}, r.admin); err != nil {
		return err
	}
	// test-config triggers a real send against the stub.
	if _, err := r.client.Call(ctx, http.MethodPost, "/channels/test-config", map[string]interface{}{
		"type":   "webhook",
		"config": config,
	}, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodDelete, "/channels/"+id, nil, r.admin)
	return err
}

func (r *Runner) channelsLark(ctx context.Context) error {
	config := map[string]interface{}{"webhook_url": r.messagingURL()}
	create, err := r.client.Call(ctx, http.MethodPost, "/channels", map[string]interface{}{
		"name":        "IT-Lark-" + shortID(),
		"type":        "lark",
		"description": "integration lark",
		"config":      config,
		"group_id":    r.groupID,
		"status":      1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodPost, "/channels/test-config", map[string]interface{}{
		"type":   "lark",
		"config": config,
	}, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodDelete, "/channels/"+id, nil, r.admin)
	return err
}

func (r *Runner) channelsTelegram(ctx context.Context) error {
	config := map[string]interface{}{
		"bot_token": "TESTTOKEN",
		"chat_id":   "12345",
		"api_base":  r.chatBotAPIBase(),
	}
	create, err := r.client.Call(ctx, http.MethodPost, "/channels", map[string]interface{}{
		"name":        "IT-TG-" + shortID(),
		"type":        "telegram",
		"description": "integration telegram",
		"config":      config,
		"group_id":    r.groupID,
		"status":      1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodPost, "/channels/test-config", map[string]interface{}{
		"type":   "telegram",
		"config": config,
	}, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodDelete, "/channels/"+id, nil, r.admin)
	return err
}

func (r *Runner) dataSourcesCRUD(ctx context.Context) error {
	create, err := r.client.Call(ctx, http.MethodPost, "/data-sources", map[string]interface{}{
		"name":        "IT-DS-" + shortID(),
		"type":        "prometheus",
		"description": "integration ds",
		"endpoint":    "http://localhost:9090",
		"config":      map[string]interface{}{},
		"status":      1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodGet, "/data-sources/"+id, nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPut, "/data-sources/"+id, map[string]interface{}{
		"description": "updated",
	}, r.admin); err != nil {
		return err
	}
	// The configured endpoint is not reachable, so the health check is
	// allowed to report failure. Only the route must exist.
	r.Optional("data source health check", func() error {
		_, err := r.client.Call(ctx, http.MethodPost, "/data-sources/"+id+"/health-check", nil, r.admin)
		return err
	})
	_, err = r.client.Call(ctx, http.MethodDelete, "/data-sources/"+id, nil, r.admin)
	return err
}

func (r *Runner) silencesCRUD(ctx context.Context) error {
	now := time.Now().UTC()
	create, err := r.client.Call(ctx, http.MethodPost, "/silences", map[string]interface{}{
		"name":        "IT-Silence-" + shortID(),
		"description": "integration silence",
		"matchers":    []map[string]interface{}{{"env": "it"}},
		"start_time":  now.Format(time.RFC3339),
		"end_time":    now.Add(time.Hour).Format(time.RFC3339),
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodPut, "/silences/"+id, map[string]interface{}{
		"description": "updated",
	}, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/silences/check", map[string]interface{}{
		"labels": map[string]interface{}{"env": "it"},
	}, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodDelete, "/silences/"+id, nil, r.admin)
	return err
}

func (r *Runner) ticketsCRUD(ctx context.Context) error {
	create, err := r.client.Call(ctx, http.MethodPost, "/tickets", map[string]interface{}{
		"title":         "IT-Ticket-" + shortID(),
		"description":   "integration ticket",
		"priority":      "low",
		"assignee_name": r.cfg.AdminUser,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodGet, "/tickets/"+id, nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPut, "/tickets/"+id, map[string]interface{}{
		"status": "in_progress",
	}, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/tickets/"+id+"/resolve", nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/tickets/"+id+"/close", nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodDelete, "/tickets/"+id, nil, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodGet, "/tickets/stats", nil, r.admin)
	return err
}

func (r *Runner) usersCRUD(ctx context.Context) error {
	username := "it_user_" + shortID()
	password := "pass1234"
	create, err := r.client.Call(ctx, http.MethodPost, "/users", map[string]interface{}{
		"username": username,
		"password": password,
		"email":    "it@example.com",
		"phone":    "",
		"role":     "user",
		"status":   1,
	}, r.admin)
	if err != nil {
		return err
	}
	id := create.ID()
	if _, err := r.client.Call(ctx, http.MethodGet, "/users/"+id, nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodGet, "/users", nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPut, "/users/"+id, map[string]interface{}{
		"email": "it2@example.com",
	}, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/users/"+id+"/password", map[string]interface{}{
		"old_password": password,
		"new_password": "pass5678",
	}, r.admin); err != nil {
		return err
	}
	_, err = r.client.Call(ctx, http.MethodDelete, "/users/"+id, nil, r.admin)
	return err
}

func (r *Runner) batchImportExport(ctx context.Context) error {
	name := "IT-Rule-" + shortID()
	rule := map[string]interface{}{
		"name":                        name,
		"description":                 "batch import",
		"expression":                  "1",
		"evaluation_interval_seconds": 60,
		"for_duration":                60,
		"severity":                    "warning",
		"labels":                      map[string]interface{}{"env": "it"},
		"annotations":                 map[string]interface{}{"summary": "batch"},
		"group_id":                    r.groupID,
		"data_source_type":            "prometheus",
		"data_source_url":             "http://localhost:9090",
		"status":                      0,
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/batch/import/rules", map[string]interface{}{
		"rules": []interface{}{rule},
	}, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodGet, "/batch/export/rules", nil, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodGet, "/batch/export/channels", nil, r.admin); err != nil {
		return err
	}

	now := time.Now().UTC()
	silence := map[string]interface{}{
		"name":        "IT-Silence-" + shortID(),
		"description": "batch",
		"matchers":    []map[string]interface{}{{"env": "it"}},
		"start_time":  now.Format(time.RFC3339),
		"end_time":    now.Add(time.Hour).Format(time.RFC3339),
	}
	if _, err := r.client.Call(ctx, http.MethodPost, "/batch/import/silences", map[string]interface{}{
		"silences": []interface{}{silence},
	}, r.admin); err != nil {
		return err
	}
	if _, err := r.client.Call(ctx, http.MethodGet, "/batch/export/silences", nil, r.admin); err != nil {
		return err
	}

	// The import endpoint returns no ids, so find the rule by name to
	// delete it again.
	list, err := r.client.Call(ctx, http.MethodGet, "/alert-rules", nil, r.admin)
	if err != nil {
		return err
	}
	for _, row := range list.Rows() {
		if stringField(row, "name") == name {
			if _, err := r.client.Call(ctx, http.MethodDelete, "/alert-rules/"+stringField(row, "id"), nil, r.admin); err != nil {
				return fmt.Errorf("failed to delete imported rule: %w", err)
			}
		}
	}
	return nil
}

func (r *Runner) miscReads(ctx context.Context) error {
	for _, path := range []string{"/statistics", "/dashboard", "/audit-logs", "/audit-logs/export"} {
		if _, err := r.client.Call(ctx, http.MethodGet, path, nil, r.admin); err != nil {
			return err
		}
	}
	return nil
}
