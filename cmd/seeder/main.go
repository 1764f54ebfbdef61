package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// City is a named location the seeder registers with the API.
type City struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type locationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type weatherResponse struct {
	LocationID  string `json:"locationId"`
	HistoryData []struct {
		Date        string   `json:"date"`
		Temperature *float64 `json:"temperature"`
	} `json:"historyData"`
}

var cities = []City{
	{Name: "Vienna", Latitude: 48.2082, Longitude: 16.3738},
	{Name: "London", Latitude: 51.5074, Longitude: -0.1278},
	{Name: "New York", Latitude: 40.7128, Longitude: -74.0060},
	{Name: "Madrid", Latitude: 40.4168, Longitude: -3.7038},
	{Name: "Nicosia", Latitude: 35.1856, Longitude: 33.3823},
	{Name: "Bogotá", Latitude: 4.7110, Longitude: -74.0721},
	{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	{Name: "Istanbul", Latitude: 41.0082, Longitude: 28.9784},
	{Name: "Los Angeles", Latitude: 34.0522, Longitude: -118.2437},
	{Name: "Berlin", Latitude: 52.5200, Longitude: 13.4050},
	{Name: "Tokyo", Latitude: 35.6762, Longitude: 139.6503},
	{Name: "Sydney", Latitude: -33.8688, Longitude: 151.2093},
	{Name: "Singapore", Latitude: 1.3521, Longitude: 103.8198},
	{Name: "São Paulo", Latitude: -23.5505, Longitude: -46.6333},
	{Name: "Toronto", Latitude: 43.6532, Longitude: -79.3832},
	{Name: "Dubai", Latitude: 25.2048, Longitude: 55.2708},
	{Name: "Mumbai", Latitude: 19.0760, Longitude: 72.8777},
	{Name: "Johannesburg", Latitude: -26.2041, Longitude: 28.0473},
}

// Seeder talks to a running weather history API.
type Seeder struct {
	apiURL    string
	authToken string
	client    *http.Client
}

func NewSeeder(apiURL, authToken string) *Seeder {
	return &Seeder{
		apiURL:    apiURL,
		authToken: authToken,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Seeder) do(method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.apiURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}
	return s.client.Do(req)
}

// EnsureLocation creates the city, or finds its id when the name is taken.
func (s *Seeder) EnsureLocation(city City) (string, error) {
	resp, err := s.do(http.MethodPost, "/locations", city)
	if err != nil {
		return "", fmt.Errorf("failed to create location: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var created locationResponse
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if created.ID == "" {
			return "", fmt.Errorf("invalid location ID in response")
		}
		log.WithFields(log.Fields{"location_id": created.ID, "name": city.Name}).Info("Created location")
		return created.ID, nil
	case http.StatusConflict:
		return s.lookupLocation(city.Name)
	default:
		return "", fmt.Errorf("location creation failed with status: %d", resp.StatusCode)
	}
}

func (s *Seeder) lookupLocation(name string) (string, error) {
	resp, err := s.do(http.MethodGet, "/locations", nil)
	if err != nil {
		return "", fmt.Errorf("failed to list locations: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("location listing failed with status: %d", resp.StatusCode)
	}

	var list struct {
		Locations []locationResponse `json:"locations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	for _, loc := range list.Locations {
		if loc.Name == name {
			log.WithFields(log.Fields{"location_id": loc.ID, "name": name}).Info("Location already present")
			return loc.ID, nil
		}
	}
	return "", fmt.Errorf("location %q reported as existing but not listed", name)
}

// IngestWeather asks the API to fetch and store the range. Empty dates use the server default.
func (s *Seeder) IngestWeather(locationID, from, to string) (int, error) {
	body := map[string]string{"locationId": locationID}
	if from != "" {
		body["fromDate"] = from
	}
	if to != "" {
		body["toDate"] = to
	}

	resp, err := s.do(http.MethodPost, "/weather", body)
	if err != nil {
		return 0, fmt.Errorf("failed to ingest weather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather ingestion failed with status: %d", resp.StatusCode)
	}

	var result weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return len(result.HistoryData), nil
}

// Run seeds the first count cities and returns how many were fully seeded.
func (s *Seeder) Run(count int, from, to string) int {
	if count > len(cities) {
		count = len(cities)
	}
	seeded := 0
	for _, city := range cities[:count] {
		id, err := s.EnsureLocation(city)
		if err != nil {
			log.WithError(err).WithField("name", city.Name).Error("Failed to register location")
			continue
		}
		days, err := s.IngestWeather(id, from, to)
		if err != nil {
			log.WithError(err).WithField("location_id", id).Error("Failed to ingest weather")
			continue
		}
		log.WithFields(log.Fields{"location_id": id, "name": city.Name, "days": days}).Info("Seeded weather history")
		seeded++
	}
	return seeded
}

func main() {
	count := 5
	if val := os.Getenv("SEED_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			count = n
		}
	}

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:3000"
	}

	from, to := os.Getenv("SEED_FROM"), os.Getenv("SEED_TO")

	log.WithFields(log.Fields{
		"count":   count,
		"api_url": apiURL,
		"from":    from,
		"to":      to,
	}).Info("Starting weather history seeding")

	seeded := NewSeeder(apiURL, os.Getenv("SEED_AUTH_TOKEN")).Run(count, from, to)
	log.WithField("seeded", seeded).Info("Seeding completed")
	if seeded == 0 {
		log.Error("Nothing seeded. Ensure SEED_AUTH_TOKEN is valid and the API is reachable.")
		os.Exit(1)
	}
}
