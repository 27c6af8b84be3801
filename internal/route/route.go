// Package route produces free-text, truck-safe route guidance. It is a
// stateless advisory feature: one request, one response, no consistency
// requirements.
package route

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/truckersblacklist/blacklist_api/internal/model"
)

const defaultVehicleWeightLbs = 80000

type Client struct {
	client    *genai.Client
	modelName string
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{client: client, modelName: modelName}, nil
}

// GenerateRouteText returns turn-by-turn style guidance for the requested
// trip, or an error when the model produces nothing usable.
func (c *Client) GenerateRouteText(ctx context.Context, req model.RouteRequest) (string, error) {
	weight := req.VehicleWeightLbs
	if weight <= 0 {
		weight = defaultVehicleWeightLbs
	}

	prompt := fmt.Sprintf(
		"Provide a detailed, truck-friendly GPS route for a vehicle weighing %d lbs from %s to %s in the USA. "+
			"Include turn-by-turn directions, major highways, and specific warnings about potential low bridges, "+
			"weight restrictions, or narrow roads. Additionally, integrate information about major truck stops and "+
			"a realistic estimate of average diesel fuel prices along the route. Do not include any external links "+
			"or URLs. The tone should be similar to a professional GPS voice. Do not make this a story. Provide "+
			"only the GPS instructions.",
		weight, req.StartLocation, req.EndLocation,
	)

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	res, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate route text: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("model returned empty route text")
	}
	return text, nil
}
