// Package imagehost は外部画像ホスティングサービスへのアップロードを提供する。
// ファイルを渡すと公開URLが返る、という不透明な契約のみに依存する。
package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

// Uploader は画像アップロードのインターフェース。
// プロフィール編集サービスから利用する。
type Uploader interface {
	// Upload はファイルをアップロードし、公開URLを返す。
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Client は画像ホスティングAPIのクライアント。
// multipart/form-dataでファイルをPOSTし、レスポンスJSONから公開URLを取り出す。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	clientID   string // Authorizationヘッダに載せるAPIクライアントID
}

// uploadResponse は画像ホスティングAPIのレスポンス。
type uploadResponse struct {
	Data struct {
		Link string `json:"link"`
	} `json:"data"`
	Success bool `json:"success"`
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint, clientID string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   endpoint,
		clientID:   clientID,
	}
}

// Upload はファイルをアップロードし、公開URLを返す。
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("multipartフォームの作成に失敗しました: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("ファイルの読み取りに失敗しました: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("multipartフォームのクローズに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("画像ホスティングAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("filename", filename),
		)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("画像ホスティングAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("filename", filename),
		)
		return "", fmt.Errorf("画像ホスティングAPIがステータス %d を返しました", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result uploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	if result.Data.Link == "" {
		return "", fmt.Errorf("レスポンスに公開URLが含まれていません")
	}

	return result.Data.Link, nil
}

// compile-time interface check
var _ Uploader = (*Client)(nil)
