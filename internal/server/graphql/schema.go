// Package graphql exposes the registries, the feed ledger and the reports as
// a GraphQL schema. It is a thin adapter: every resolver delegates to the
// same services the REST handlers use, so validation and balance logic are
// never duplicated here.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/lagranja/livestock/internal/domain/models"
	"github.com/lagranja/livestock/internal/service/ledger"
	"github.com/lagranja/livestock/internal/service/registry"
	"github.com/lagranja/livestock/internal/service/reporting"
)

// Services groups the dependencies the schema resolves against.
type Services struct {
	Clients   *registry.ClientService
	FeedTypes *registry.FeedTypeService
	Animals   *registry.AnimalService
	Ledger    *ledger.Service
	Reporting *reporting.Service
}

// feedingEventPayload pairs an event with its resolved feed type so the
// event's feedType field can be answered without another lookup.
type feedingEventPayload struct {
	models.FeedingEvent
	FeedType *models.FeedType
}

// NewSchema builds the executable schema over the provided services.
func NewSchema(svcs Services) (graphql.Schema, error) {
	clientType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Client",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Client).ID.Hex(), nil
			}},
			"nationalId": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"givenNames": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"surname":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"address":    &graphql.Field{Type: graphql.String},
			"phone":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"fullName": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Client).FullName(), nil
			}},
		},
	})

	feedTypeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeedType",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return feedTypeSource(p).ID.Hex(), nil
			}},
			"externalCode": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":  &graphql.Field{Type: graphql.String},
			"stockPounds":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	feedingEventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeedingEvent",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(feedingEventPayload).ID.Hex(), nil
			}},
			"feedType": &graphql.Field{Type: feedTypeType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				ft := p.Source.(feedingEventPayload).FeedType
				if ft == nil {
					return nil, nil
				}
				return ft, nil
			}},
			// Promoted fields of the embedded event need explicit resolvers;
			// the library's default resolver only sees top-level fields.
			"nameSnapshot": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(feedingEventPayload).NameSnapshot, nil
			}},
			"descriptionSnapshot": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(feedingEventPayload).DescriptionSnapshot, nil
			}},
			"dosePounds": &graphql.Field{Type: graphql.NewNonNull(graphql.Float), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(feedingEventPayload).DosePounds, nil
			}},
			"timestamp": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(feedingEventPayload).Timestamp, nil
			}},
		},
	})

	animalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Animal",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.AnimalView).ID.Hex(), nil
			}},
			"tag": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.AnimalView).Tag, nil
			}},
			"breed": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.AnimalView).Breed, nil
			}},
			"ageMonths": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.AnimalView).AgeMonths, nil
			}},
			"weightKg": &graphql.Field{Type: graphql.NewNonNull(graphql.Float), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.AnimalView).WeightKg, nil
			}},
			"breedName": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return models.BreedName(p.Source.(*models.AnimalView).Breed), nil
			}},
			"client": &graphql.Field{Type: clientType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				client := p.Source.(*models.AnimalView).Client
				if client == nil {
					return nil, nil
				}
				return client, nil
			}},
			"feedingHistory": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(feedingEventType))), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				view := p.Source.(*models.AnimalView)
				events := make([]feedingEventPayload, 0, len(view.FeedingHistory))
				for _, event := range view.FeedingHistory {
					events = append(events, feedingEventPayload{
						FeedingEvent: event,
						FeedType:     view.FeedTypes[event.FeedTypeID.Hex()],
					})
				}
				return events, nil
			}},
		},
	})

	traceabilityRowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TraceabilityRow",
		Fields: graphql.Fields{
			"animalTag":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"clientName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"feedName":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"dosePounds": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"date":       &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	clientConsumptionRowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ClientConsumptionRow",
		Fields: graphql.Fields{
			"clientName":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"totalPounds": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"events":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"animals":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	feedConsumptionRowType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeedConsumptionRow",
		Fields: graphql.Fields{
			"feedName":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"events":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalPounds": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"percentage":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"clients": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(clientType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					clients, err := svcs.Clients.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]*models.Client, len(clients))
					for i := range clients {
						out[i] = &clients[i]
					}
					return out, nil
				},
			},
			"client": &graphql.Field{
				Type: clientType,
				Args: graphql.FieldConfigArgument{"id": idArg()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Clients.Get(p.Context, argString(p, "id"))
				},
			},
			"feedTypes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(feedTypeType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					fts, err := svcs.FeedTypes.List(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]*models.FeedType, len(fts))
					for i := range fts {
						out[i] = &fts[i]
					}
					return out, nil
				},
			},
			"feedType": &graphql.Field{
				Type: feedTypeType,
				Args: graphql.FieldConfigArgument{"id": idArg()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.FeedTypes.Get(p.Context, argString(p, "id"))
				},
			},
			"animals": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(animalType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Animals.List(p.Context)
				},
			},
			"animal": &graphql.Field{
				Type: animalType,
				Args: graphql.FieldConfigArgument{"id": idArg()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Animals.Get(p.Context, argString(p, "id"))
				},
			},
			"traceabilityByFeed": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(traceabilityRowType))),
				Args: graphql.FieldConfigArgument{
					"feedTypeId": &graphql.ArgumentConfig{Type: graphql.ID},
					"startDate":  &graphql.ArgumentConfig{Type: graphql.String},
					"endDate":    &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					window, err := reporting.ParseWindow(argString(p, "startDate"), argString(p, "endDate"))
					if err != nil {
						return nil, err
					}
					return svcs.Reporting.TraceabilityByFeed(p.Context, argString(p, "feedTypeId"), window)
				},
			},
			"consumptionByClient": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(clientConsumptionRowType))),
				Args: windowArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					window, err := reporting.ParseWindow(argString(p, "startDate"), argString(p, "endDate"))
					if err != nil {
						return nil, err
					}
					return svcs.Reporting.ConsumptionByClient(p.Context, window)
				},
			},
			"consumptionByFeed": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(feedConsumptionRowType))),
				Args: windowArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					window, err := reporting.ParseWindow(argString(p, "startDate"), argString(p, "endDate"))
					if err != nil {
						return nil, err
					}
					return svcs.Reporting.ConsumptionByFeed(p.Context, window)
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createClient": &graphql.Field{
				Type: graphql.NewNonNull(clientType),
				Args: clientArgs(true),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Clients.Create(p.Context, clientInput(p))
				},
			},
			"updateClient": &graphql.Field{
				Type: graphql.NewNonNull(clientType),
				Args: clientArgs(false),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Clients.Update(p.Context, argString(p, "id"), clientInput(p))
				},
			},
			"deleteClient": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{"id": idArg()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					removed, err := svcs.Clients.Delete(p.Context, argString(p, "id"))
					if err != nil {
						return nil, err
					}
					return int(removed), nil
				},
			},
			"createFeedType": &graphql.Field{
				Type: graphql.NewNonNull(feedTypeType),
				Args: graphql.FieldConfigArgument{
					"externalCode": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"name":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description":  &graphql.ArgumentConfig{Type: graphql.String},
					"stockPounds":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.FeedTypes.Create(p.Context, registry.FeedTypeInput{
						ExternalCode: argString(p, "externalCode"),
						Name:         argString(p, "name"),
						Description:  argString(p, "description"),
						StockPounds:  argFloat(p, "stockPounds"),
					})
				},
			},
			"updateFeedType": &graphql.Field{
				Type: graphql.NewNonNull(feedTypeType),
				Args: graphql.FieldConfigArgument{
					"id":           idArg(),
					"externalCode": &graphql.ArgumentConfig{Type: graphql.String},
					"name":         &graphql.ArgumentConfig{Type: graphql.String},
					"description":  &graphql.ArgumentConfig{Type: graphql.String},
					"stockPounds":  &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.FeedTypes.Update(p.Context, argString(p, "id"), registry.FeedTypeUpdate{
						ExternalCode: optString(p, "externalCode"),
						Name:         optString(p, "name"),
						Description:  optString(p, "description"),
						StockPounds:  optFloat(p, "stockPounds"),
					})
				},
			},
			"restockFeedType": &graphql.Field{
				Type: graphql.NewNonNull(feedTypeType),
				Args: graphql.FieldConfigArgument{
					"id":     idArg(),
					"pounds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"reason": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.FeedTypes.Restock(p.Context, argString(p, "id"), argFloat(p, "pounds"), argString(p, "reason"))
				},
			},
			"deleteFeedType": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{"id": idArg()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := svcs.FeedTypes.Delete(p.Context, argString(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"createAnimal": &graphql.Field{
				Type: graphql.NewNonNull(animalType),
				Args: animalArgs(true),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Animals.Create(p.Context, animalInput(p))
				},
			},
			"updateAnimal": &graphql.Field{
				Type: graphql.NewNonNull(animalType),
				Args: animalArgs(false),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Animals.Update(p.Context, argString(p, "id"), animalInput(p))
				},
			},
			"deleteAnimal": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{"id": idArg()},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := svcs.Animals.Delete(p.Context, argString(p, "id")); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
			"recordFeeding": &graphql.Field{
				Type: graphql.NewNonNull(animalType),
				Args: graphql.FieldConfigArgument{
					"animalId":   idArg(),
					"feedTypeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"dosePounds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Ledger.RecordFeeding(p.Context, argString(p, "animalId"), argString(p, "feedTypeId"), argFloat(p, "dosePounds"))
				},
			},
			"correctFeedingEvent": &graphql.Field{
				Type: graphql.NewNonNull(animalType),
				Args: graphql.FieldConfigArgument{
					"animalId":   idArg(),
					"eventId":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"feedTypeId": &graphql.ArgumentConfig{Type: graphql.ID},
					"dosePounds": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Ledger.CorrectFeedingEvent(p.Context, argString(p, "animalId"), argString(p, "eventId"), ledger.Correction{
						FeedTypeID: optString(p, "feedTypeId"),
						DosePounds: optFloat(p, "dosePounds"),
					})
				},
			},
			"removeFeedingEvent": &graphql.Field{
				Type: graphql.NewNonNull(animalType),
				Args: graphql.FieldConfigArgument{
					"animalId": idArg(),
					"eventId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svcs.Ledger.RemoveFeedingEvent(p.Context, argString(p, "animalId"), argString(p, "eventId"))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

// feedTypeSource accepts both pointer and value sources, since feed types
// reach the schema from lists and from embedded event payloads.
func feedTypeSource(p graphql.ResolveParams) *models.FeedType {
	switch src := p.Source.(type) {
	case *models.FeedType:
		return src
	case models.FeedType:
		return &src
	default:
		panic(fmt.Sprintf("unexpected feed type source %T", p.Source))
	}
}

func idArg() *graphql.ArgumentConfig {
	return &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}
}

func windowArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"startDate": &graphql.ArgumentConfig{Type: graphql.String},
		"endDate":   &graphql.ArgumentConfig{Type: graphql.String},
	}
}

func clientArgs(create bool) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"nationalId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"givenNames": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"surname":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"address":    &graphql.ArgumentConfig{Type: graphql.String},
		"phone":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	if !create {
		args["id"] = idArg()
	}
	return args
}

func clientInput(p graphql.ResolveParams) registry.ClientInput {
	return registry.ClientInput{
		NationalID: argString(p, "nationalId"),
		GivenNames: argString(p, "givenNames"),
		Surname:    argString(p, "surname"),
		Address:    argString(p, "address"),
		Phone:      argString(p, "phone"),
	}
}

func animalArgs(create bool) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"tag":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"breed":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		"ageMonths": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		"weightKg":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"clientId":  &graphql.ArgumentConfig{Type: graphql.ID},
	}
	if !create {
		args["id"] = idArg()
	}
	return args
}

func animalInput(p graphql.ResolveParams) registry.AnimalInput {
	return registry.AnimalInput{
		Tag:       argString(p, "tag"),
		Breed:     argInt(p, "breed"),
		AgeMonths: argInt(p, "ageMonths"),
		WeightKg:  argFloat(p, "weightKg"),
		ClientID:  argString(p, "clientId"),
	}
}

func argString(p graphql.ResolveParams, name string) string {
	if value, ok := p.Args[name].(string); ok {
		return value
	}
	return ""
}

func argInt(p graphql.ResolveParams, name string) int {
	if value, ok := p.Args[name].(int); ok {
		return value
	}
	return 0
}

func argFloat(p graphql.ResolveParams, name string) float64 {
	switch value := p.Args[name].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	default:
		return 0
	}
}

func optString(p graphql.ResolveParams, name string) *string {
	if value, ok := p.Args[name].(string); ok {
		return &value
	}
	return nil
}

func optFloat(p graphql.ResolveParams, name string) *float64 {
	switch value := p.Args[name].(type) {
	case float64:
		return &value
	case int:
		f := float64(value)
		return &f
	default:
		return nil
	}
}
