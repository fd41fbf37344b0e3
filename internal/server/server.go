package server

// Server combines the entity specific HTTP servers of the service. Scoring is
// the only surface for now.
type Server struct {
	PredictionServer
}

func NewServer(
	predictionServer PredictionServer,
) Server {
	return Server{
		PredictionServer: predictionServer,
	}
}
