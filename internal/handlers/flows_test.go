// internal/handlers/flows_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/market"
	"github.com/nice1tools/market-backend/internal/services"
)

type FlowAPITestSuite struct {
	suite.Suite
	router *gin.Engine
	chain  *httptest.Server
}

func (suite *FlowAPITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Fake chain RPC and wallet bridge on one server: table reads return a
	// three-copy Sword group, transactions always broadcast.
	txCounter := 0
	suite.chain = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chain/get_table_rows":
			var q struct {
				Table string `json:"table"`
			}
			json.NewDecoder(r.Body).Decode(&q)

			rows := "[]"
			if q.Table == "sassets" {
				rows = `[
					{"id":"100","owner":"alice","author":"alice","category":"weapon","idata":"{\"name\":\"Sword\"}","mdata":""},
					{"id":"200","owner":"alice","author":"alice","category":"weapon","idata":"{\"name\":\"Sword\"}","mdata":""},
					{"id":"300","owner":"alice","author":"alice","category":"weapon","idata":"{\"name\":\"Sword\"}","mdata":""}
				]`
			}
			fmt.Fprintf(w, `{"rows":%s,"more":false}`, rows)
		case "/v1/bridge/transact":
			txCounter++
			fmt.Fprintf(w, `{"transaction_id":"txn-%d"}`, txCounter)
		default:
			http.NotFound(w, r)
		}
	}))

	cfg := &config.Config{
		Chain: config.ChainConfig{
			RPCURL:         suite.chain.URL,
			BridgeURL:      suite.chain.URL,
			AssetContract:  "nice2simplea",
			SaleContract:   "n1licensepos",
			RentalContract: "n1licenseren",
			DemoContract:   "n1licensedem",
			TokenSymbol:    "NICEONE",
			TokenPrecision: 4,
			TableRowLimit:  1000,
		},
	}

	inventoryService := services.NewInventoryService(cfg)
	flowHandler := NewFlowHandler(cfg, market.NewMemoryFlowStore(), inventoryService)
	actionHandler := NewActionHandler(cfg, inventoryService)

	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		c.Set("account", "alice")
		c.Set("whitelisted", true)
		c.Next()
	})
	suite.router.POST("/v1/flows/:kind", flowHandler.ExecuteFlow)
	suite.router.POST("/v1/actions/price", actionHandler.UpdatePrice)
}

func (suite *FlowAPITestSuite) TearDownSuite() {
	suite.chain.Close()
}

func (suite *FlowAPITestSuite) postJSON(path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *FlowAPITestSuite) TestExecuteSaleFlow() {
	w := suite.postJSON("/v1/flows/sale", map[string]interface{}{
		"name":      "Sword",
		"category":  "weapon",
		"product":   "Sword",
		"price":     5.5,
		"receiver1": "alice",
		"percentr1": 80,
		"copies":    2,
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "completed", data["step"])
	assert.Equal(suite.T(), "sword", data["product"])
	assert.NotEmpty(suite.T(), data["register_tx_id"])
	assert.NotEmpty(suite.T(), data["transfer_tx_id"])
}

func (suite *FlowAPITestSuite) TestExecuteFlowUnknownKind() {
	w := suite.postJSON("/v1/flows/auction", map[string]interface{}{
		"name":     "Sword",
		"category": "weapon",
		"product":  "Sword",
		"copies":   1,
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *FlowAPITestSuite) TestExecuteFlowUnknownGroup() {
	w := suite.postJSON("/v1/flows/sale", map[string]interface{}{
		"name":      "Axe",
		"category":  "weapon",
		"product":   "Axe",
		"price":     1.0,
		"receiver1": "alice",
		"copies":    1,
	})

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *FlowAPITestSuite) TestUpdatePrice() {
	w := suite.postJSON("/v1/actions/price", map[string]interface{}{
		"kind":    "sale",
		"product": "sword",
		"int_ref": 12345678,
		"price":   2.25,
	})

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.NotEmpty(suite.T(), data["transaction_id"])
}

func (suite *FlowAPITestSuite) TestUpdatePriceRejectsZero() {
	w := suite.postJSON("/v1/actions/price", map[string]interface{}{
		"kind":    "sale",
		"product": "sword",
		"int_ref": 12345678,
	})

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func TestFlowAPISuite(t *testing.T) {
	suite.Run(t, new(FlowAPITestSuite))
}
