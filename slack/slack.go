// Package slack posts generation outcomes to a Slack webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"curachef"
)

type Client struct {
	webhookURL string
	httpClient curachef.HTTPClient
}

func NewClient(webhookURL string, httpClient curachef.HTTPClient) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

func (c *Client) PostMessage(ctx context.Context, channel string, message string) error {
	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostResult posts a short human-readable summary of one feature's outcome.
func (c *Client) PostResult(ctx context.Context, channel string, feature curachef.Feature, result curachef.FeatureResult) error {
	return c.PostMessage(ctx, channel, SummarizeResult(feature, result))
}

// SummarizeResult renders a feature outcome as one Slack-friendly line.
func SummarizeResult(feature curachef.Feature, result curachef.FeatureResult) string {
	var parts []string

	if len(result.Recipes) > 0 {
		titles := make([]string, 0, len(result.Recipes))
		for _, r := range result.Recipes {
			titles = append(titles, r.Title)
		}
		parts = append(parts, fmt.Sprintf("%d recipe(s): %s", len(result.Recipes), strings.Join(titles, ", ")))
	}
	if result.Nutrition != nil {
		parts = append(parts, fmt.Sprintf("%.0f kcal total (%.0f per serving)",
			result.Nutrition.Calories.Total, result.Nutrition.Calories.PerServing))
	}
	if result.DietaryPlan != nil {
		parts = append(parts, fmt.Sprintf("dietary plan (%d foods to favor, %d to avoid)",
			len(result.DietaryPlan.FoodsToFavor), len(result.DietaryPlan.FoodsToAvoid)))
	}
	if result.PersonalizedPlan != nil {
		parts = append(parts, fmt.Sprintf("%q covering %d day(s)",
			result.PersonalizedPlan.Title, len(result.PersonalizedPlan.Days)))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("[%s] no content generated", feature)
	}
	return fmt.Sprintf("[%s] %s", feature, strings.Join(parts, "; "))
}
