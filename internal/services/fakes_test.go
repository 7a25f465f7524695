package services

import (
	"context"
	"errors"

	"nearbot/internal/clients"
	"nearbot/internal/config"
	"nearbot/internal/domain/entities"
)

var errUpstream = errors.New("upstream down")

type fakeFeed struct {
	rows  []clients.TruckRow
	err   error
	calls int
}

func (f *fakeFeed) Fetch(ctx context.Context) ([]clients.TruckRow, error) {
	f.calls++
	return f.rows, f.err
}

type fakeForecast struct {
	forecasts map[string]*clients.Forecast
	err       error
	calls     int
}

func (f *fakeForecast) Forecast(ctx context.Context, city string) (*clients.Forecast, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	fc, ok := f.forecasts[city]
	if !ok {
		return nil, clients.ErrUnknownLocation
	}
	return fc, nil
}

type fakeScreening struct {
	day *clients.ScreeningDay
	err error
}

func (f *fakeScreening) Latest(ctx context.Context) (*clients.ScreeningDay, error) {
	return f.day, f.err
}

type fakeDraws struct {
	draws []entities.LotteryDraw
	err   error
	calls int
}

func (f *fakeDraws) Latest(ctx context.Context) ([]entities.LotteryDraw, error) {
	f.calls++
	return f.draws, f.err
}

type fakeRegistry struct {
	rows []clients.RegistryToilet
	err  error
}

func (f *fakeRegistry) Fetch(ctx context.Context) ([]clients.RegistryToilet, error) {
	return f.rows, f.err
}

type fakeGeocoder struct {
	address string
	err     error
	calls   int
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, p entities.GeoPoint) (string, error) {
	f.calls++
	return f.address, f.err
}

// home is the default deployment home point in 三重區.
var home = config.NewDefaultConfig().Home

func truck(city, label string, lat, lng clients.Coordinate) clients.TruckRow {
	return clients.TruckRow{CityName: city, Location: label, Latitude: lat, Longitude: lng}
}

func toiletAt(name string, lat, lng float64) entities.ToiletRecord {
	return entities.ToiletRecord{Name: name, Address: "地址", Grade: "優等級", Point: entities.NewGeoPoint(lat, lng)}
}
