// Package paymentprovider реализует клиент внешнего карточного
// платёжного провайдера: регистрация платёжного метода и создание
// платежа с автоматическим подтверждением без редиректа.
package paymentprovider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client — HTTP-клиент платёжного провайдера.
// Ключ API передаётся в конструктор явно, клиент несёт собственный
// таймаут: оба вызова провайдера блокирующие, без таймаута зависший
// провайдер повесит весь запрос покупки.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного провайдера.
func NewClient(apiKey, apiURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// CreatePaymentMethod регистрирует карту у провайдера и возвращает
// токен платёжного метода.
func (c *Client) CreatePaymentMethod(ctx context.Context, card Card) (*PaymentMethod, error) {
	form := url.Values{}
	form.Set("type", "card")
	form.Set("card[number]", card.Number)
	form.Set("card[exp_month]", strconv.Itoa(card.ExpMonth))
	form.Set("card[exp_year]", strconv.Itoa(card.ExpYear))
	form.Set("card[cvc]", card.CVC)

	var method PaymentMethod
	if err := c.postForm(ctx, "/payment_methods", form, &method); err != nil {
		return nil, err
	}
	return &method, nil
}

// ConfirmPaymentIntent создаёт платёж на заданную сумму с зарегистрированным
// методом и автоматическим подтверждением. Редиректы отключены: платёж
// обязан завершиться или отклониться без перехода пользователя на сторону
// провайдера.
func (c *Client) ConfirmPaymentIntent(ctx context.Context, amount int, methodID, description string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.Itoa(amount))
	form.Set("currency", "usd")
	form.Set("payment_method", methodID)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")
	form.Set("confirm", "true")
	form.Set("description", description)

	var intent PaymentIntent
	if err := c.postForm(ctx, "/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
