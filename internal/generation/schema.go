package generation

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
)

// outputsSchema declares the structured response contract: exactly four
// required top-level sections, all string-typed apart from the two ordered
// lists. The provider is told to emit JSON matching this shape.
var outputsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"blogPost": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":   {Type: genai.TypeString},
				"content": {Type: genai.TypeString},
			},
			Required: []string{"title", "content"},
		},
		"linkedIn": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"content": {Type: genai.TypeString},
			},
			Required: []string{"content"},
		},
		"twitterThread": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"tweets": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"tweets"},
		},
		"email": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"subjects": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"content": {Type: genai.TypeString},
			},
			Required: []string{"subjects", "content"},
		},
	},
	Required: []string{"blogPost", "linkedIn", "twitterThread", "email"},
}

// decodeOutputs parses a raw provider payload into an output bundle and
// enforces the all-or-nothing contract: a payload missing any section, or
// with an empty required field, is a failure. There is no partial bundle.
func decodeOutputs(payload []byte) (testimonial.Outputs, error) {
	var outputs testimonial.Outputs
	if err := json.Unmarshal(payload, &outputs); err != nil {
		return testimonial.Outputs{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if outputs.BlogPost.Title == "" || outputs.BlogPost.Content == "" {
		return testimonial.Outputs{}, fmt.Errorf("%w: blog section incomplete", ErrMalformedResponse)
	}
	if outputs.LinkedIn.Content == "" {
		return testimonial.Outputs{}, fmt.Errorf("%w: linkedIn section incomplete", ErrMalformedResponse)
	}
	if len(outputs.TwitterThread.Tweets) == 0 {
		return testimonial.Outputs{}, fmt.Errorf("%w: twitter thread empty", ErrMalformedResponse)
	}
	if len(outputs.Email.Subjects) == 0 || outputs.Email.Content == "" {
		return testimonial.Outputs{}, fmt.Errorf("%w: email section incomplete", ErrMalformedResponse)
	}
	return outputs, nil
}
