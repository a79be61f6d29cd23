// Demo: open the Google reCAPTCHA demo page, solve the challenge
// through the Capsolver API and submit the form.
//
// Needs CAPSOLVER_KEY in the environment or in a .env file.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Kreppz/capsolve"
	"github.com/Kreppz/capsolve/capsolver"
	"github.com/Kreppz/capsolve/logger"
)

const DEMO_URL = "https://www.google.com/recaptcha/api2/demo"

func main() {
	godotenv.Load()
	log := logger.Logger()

	apiKey := os.Getenv("CAPSOLVER_KEY")
	if apiKey == "" {
		log.Fatal().Msg("CAPSOLVER_KEY is not set")
	}

	client := capsolver.New(apiKey)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	if balance, err := client.Balance(ctx); err == nil {
		log.Info().Float64("balance", balance).Msg("Capsolver account")
	} else {
		log.Warn().Err(err).Msg("Cannot read balance")
	}
	cancel()

	model := new(capsolve.Model).SetVisible(true).SetShowImages(true)

	navigator := capsolve.NewNavigator(model)
	defer navigator.Close()

	navigator.SetCaptchaSolver(capsolve.NewRecaptchaSolver(client))

	if err := navigator.Navigate(DEMO_URL); err != nil {
		log.Fatal().Err(err).Msg("Navigation failed")
	}

	log.Info().Int("status", navigator.GetNavigateStatus()).Msg("Challenge solved, submitting form")

	page := navigator.GetPage()
	if page == nil {
		log.Fatal().Msg("No active page")
	}

	page.MustElement("#recaptcha-demo-submit").MustClick()
	page.MustWaitLoad()

	success, err := page.Element(".recaptcha-success")
	if err != nil {
		log.Fatal().Err(err).Msg("Demo page did not accept the token")
	}

	text, _ := success.Text()
	log.Info().Str("result", text).Msg("Done")
}
