package healthapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DrugLabel is the subset of an OpenFDA label record used for coverage
// classification.
type DrugLabel struct {
	Medication  string `json:"medication"`
	ProductType string `json:"product_type"`
	DrugClass   string `json:"drug_class"`
}

// Interaction is one drug-drug interaction reported by RxNorm.
type Interaction struct {
	OtherDrug   string `json:"drug2"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// DrugLabel looks a medication up in the OpenFDA label index by brand or
// generic name.
func (c *Client) DrugLabel(ctx context.Context, medication string) (*DrugLabel, error) {
	med := strings.TrimSpace(medication)
	if med == "" {
		return nil, fmt.Errorf("healthapi: medication is empty")
	}

	params := url.Values{
		"search": {fmt.Sprintf("openfda.brand_name:%q OR openfda.generic_name:%q", med, med)},
		"limit":  {"1"},
	}
	raw, err := c.get(ctx, c.httpClient, strings.TrimSpace(c.cfg.OpenFDAURL), params)
	if err != nil {
		return nil, fmt.Errorf("drug label: %w", err)
	}

	var parsed struct {
		Results []struct {
			OpenFDA struct {
				ProductType   []string `json:"product_type"`
				PharmClassEPC []string `json:"pharm_class_epc"`
			} `json:"openfda"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("drug label: decode response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("drug label %q: %w", med, ErrNotFound)
	}

	openfda := parsed.Results[0].OpenFDA
	label := &DrugLabel{Medication: med, DrugClass: "Unknown"}
	if len(openfda.ProductType) > 0 {
		label.ProductType = strings.ToLower(openfda.ProductType[0])
	}
	if len(openfda.PharmClassEPC) > 0 {
		label.DrugClass = openfda.PharmClassEPC[0]
	}
	return label, nil
}

// GetInteractions resolves a medication to an RxNorm concept and returns up
// to five known interactions. Missing concepts or upstream failures yield an
// empty list, not an error, matching the degrade-to-sentinel contract.
func (c *Client) GetInteractions(ctx context.Context, medication string) ([]Interaction, error) {
	base := strings.TrimRight(strings.TrimSpace(c.cfg.RxNormURL), "/")

	raw, err := c.get(ctx, c.httpClient, base+"/drugs.json", url.Values{"name": {strings.TrimSpace(medication)}})
	if err != nil {
		return nil, fmt.Errorf("interactions: %w", err)
	}

	var drugs struct {
		DrugGroup struct {
			ConceptProperties []struct {
				RxCUI string `json:"rxcui"`
			} `json:"conceptProperties"`
		} `json:"drugGroup"`
	}
	if err := json.Unmarshal(raw, &drugs); err != nil {
		return nil, fmt.Errorf("interactions: decode drugs response: %w", err)
	}
	if len(drugs.DrugGroup.ConceptProperties) == 0 || drugs.DrugGroup.ConceptProperties[0].RxCUI == "" {
		return nil, nil
	}
	rxcui := drugs.DrugGroup.ConceptProperties[0].RxCUI

	raw, err = c.get(ctx, c.httpClient, base+"/interaction/interaction.json", url.Values{"rxcui": {rxcui}})
	if err != nil {
		return nil, fmt.Errorf("interactions: %w", err)
	}

	var parsed struct {
		InteractionTypeGroup []struct {
			InteractionType []struct {
				InteractionPair []struct {
					Severity           string `json:"severity"`
					Description        string `json:"description"`
					InteractionConcept []struct {
						MinConceptItem struct {
							Name string `json:"name"`
						} `json:"minConceptItem"`
					} `json:"interactionConcept"`
				} `json:"interactionPair"`
			} `json:"interactionType"`
		} `json:"interactionTypeGroup"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("interactions: decode interaction response: %w", err)
	}

	interactions := make([]Interaction, 0, 5)
	for _, group := range parsed.InteractionTypeGroup[:min(1, len(parsed.InteractionTypeGroup))] {
		types := group.InteractionType
		if len(types) > 5 {
			types = types[:5]
		}
		for _, pair := range types {
			for _, ix := range pair.InteractionPair {
				other := "Unknown"
				if len(ix.InteractionConcept) > 1 {
					if name := ix.InteractionConcept[1].MinConceptItem.Name; name != "" {
						other = name
					}
				}
				severity := ix.Severity
				if severity == "" {
					severity = "Unknown"
				}
				description := ix.Description
				if description == "" {
					description = "No description"
				}
				interactions = append(interactions, Interaction{
					OtherDrug:   other,
					Severity:    severity,
					Description: description,
				})
				if len(interactions) >= 5 {
					return interactions, nil
				}
			}
		}
	}
	return interactions, nil
}
