/*
Copyright 2026 Vermillion Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/vermillionhq/vermillion/config"
	"github.com/vermillionhq/vermillion/internal/request"
)

// SlackNotification posts an error message to the configured Slack
// webhook.
func SlackNotification(err error) {
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From Vermillion",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Error:*\n%v"
					}
				]
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, err.Error(), time.Now().Format(time.RFC822)))

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}

	payload, err := request.ToJsonReq(&data)
	if err != nil {
		log.Println(err)
		return
	}

	req, err := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if err != nil {
		log.Println(err)
		return
	}

	var response map[string]interface{}
	if _, err := request.Call(req, &response); err != nil {
		log.Println(err)
	}
}

// WebhookNotification posts an arbitrary event payload to the configured
// operator webhook, retrying with exponential backoff. Delivery gives up
// after one minute.
func WebhookNotification(event string, payload interface{}) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	body := map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().UTC(),
		"data":      payload,
	}

	operation := func() error {
		jsonBody, err := request.ToJsonReq(body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequest("POST", conf.Notification.Webhook.Url, jsonBody)
		if err != nil {
			return backoff.Permanent(err)
		}
		for key, value := range conf.Notification.Webhook.Headers {
			req.Header.Set(key, value)
		}

		var response map[string]interface{}
		resp, err := request.Call(req, &response)
		if err != nil {
			return err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = time.Minute
	if err := backoff.Retry(operation, policy); err != nil {
		logrus.Errorf("webhook delivery for %q failed: %v", event, err)
		return err
	}
	return nil
}

// NotifyError logs the error and fans it out to the configured channels
// without blocking the caller.
func NotifyError(systemError error) {
	go func(systemError error) {
		logrus.Error(systemError)

		conf, err := config.Fetch()
		if err != nil {
			log.Println(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl != "" {
			SlackNotification(systemError)
		}
		if conf.Notification.Webhook.Url != "" {
			_ = WebhookNotification("system.error", map[string]string{"error": systemError.Error()})
		}
	}(systemError)
}
