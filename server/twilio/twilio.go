package twilio

import (
	"github.com/ares-safety/ares/server/logger"
	"github.com/ares-safety/ares/shared"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var logg = logger.NewLogger()

type ClientWrapper struct {
	client     *twilio.RestClient
	config     shared.TwilioConfig
	inTestMode bool
}

// NewClient wraps the twilio REST client. With inTestMode set, SendMessage
// only logs - no SMS leaves the process.
func NewClient(config shared.TwilioConfig, inTestMode bool) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{
		client:     client,
		config:     config,
		inTestMode: inTestMode,
	}
}

func (cw *ClientWrapper) SendMessage(to, msg string) error {
	if cw.inTestMode {
		logg.Infof("[test-mode] sms to %v: %v", to, msg)
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return err
	}

	if resp.ErrorMessage != nil {
		logg.Errorf("twilio message error: %v", *resp.ErrorMessage)
	}

	return nil
}
