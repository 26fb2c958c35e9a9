package obs

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/ssikv/ssikv/pkg/txn"
)

// schema builds a read-only GraphQL schema over sites and transactions,
// resolved against whatever engine state is current at query time.
func (s *Server) schema() (graphql.Schema, error) {
	entryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "DumpEntry",
		Fields: graphql.Fields{
			"var":   &graphql.Field{Type: graphql.String},
			"value": &graphql.Field{Type: graphql.Int},
		},
	})

	siteType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Site",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"status":  &graphql.Field{Type: graphql.String},
			"entries": &graphql.Field{Type: graphql.NewList(entryType)},
		},
	})

	txType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Transaction",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"startTick":  &graphql.Field{Type: graphql.Int},
			"state":      &graphql.Field{Type: graphql.String},
			"commitTick": &graphql.Field{Type: graphql.Int},
			"reason":     &graphql.Field{Type: graphql.String},
			"writes":     &graphql.Field{Type: graphql.NewList(graphql.String)},
			"reads":      &graphql.Field{Type: graphql.NewList(graphql.String)},
			"edges":      &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sites": &graphql.Field{
				Type: graphql.NewList(siteType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					s.mu.RLock()
					defer s.mu.RUnlock()
					var out []siteView
					for _, id := range s.eng.SiteIDs() {
						if v, ok := s.siteView(id); ok {
							out = append(out, v)
						}
					}
					return out, nil
				},
			},
			"transaction": &graphql.Field{
				Type: txType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					s.mu.RLock()
					defer s.mu.RUnlock()
					id, _ := p.Args["id"].(string)
					v, ok := s.txView(txn.ID(id))
					if !ok {
						return nil, nil
					}
					return v, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "GraphQL only accepts POST requests")
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sch, err := s.schema()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         sch,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func graphiQLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(graphiQLPage))
	}
}

const graphiQLPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>ssikv GraphQL</title>
  <script crossorigin src="https://unpkg.com/react@17/umd/react.production.min.js"></script>
  <script crossorigin src="https://unpkg.com/react-dom@17/umd/react-dom.production.min.js"></script>
  <link rel="stylesheet" href="https://unpkg.com/graphiql@1.8.7/graphiql.min.css" />
</head>
<body style="margin:0">
  <div id="graphiql" style="height:100vh"></div>
  <script src="https://unpkg.com/graphiql@1.8.7/graphiql.min.js"></script>
  <script>
    ReactDOM.render(
      React.createElement(GraphiQL, { fetcher: GraphiQL.createFetcher({ url: '/graphql' }) }),
      document.getElementById('graphiql'),
    );
  </script>
</body>
</html>
`
