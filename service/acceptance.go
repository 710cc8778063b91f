package service

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

// Acceptance exercises the public API end to end. The handler under test is
// expected to have the pools `tank` and `misc` available.
func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	value := base64.StdEncoding.EncodeToString([]byte("hello world"))

	a.Alternative("Create dataset", func(a *biff.A) {
		resp := apiRequest("POST", "/datasets").
			WithBodyJson(JSON{
				"name": "tank/data",
			}).Do()
		Save(resp, "Create dataset", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		body := resp.BodyJsonMap()
		biff.AssertEqual(body["name"], "tank/data")
		biff.AssertEqual(body["kind"], "filesystem")

		a.Alternative("Get dataset", func(a *biff.A) {
			resp := apiRequest("POST", "/datasets:getDataset").
				WithBodyJson(JSON{
					"name": "tank/data",
				}).Do()
			Save(resp, "Get dataset", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJsonMap()["name"], "tank/data")
		})

		a.Alternative("List datasets", func(a *biff.A) {
			resp := apiRequest("GET", "/datasets").Do()
			Save(resp, "List datasets", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			found := false
			for _, item := range resp.BodyJson().([]interface{}) {
				if item.(JSON)["name"] == "tank/data" {
					found = true
				}
			}
			biff.AssertTrue(found)
		})

		a.Alternative("Dataset exists", func(a *biff.A) {
			resp := apiRequest("POST", "/datasets:exists").
				WithBodyJson(JSON{
					"name": "tank/data",
				}).Do()
			Save(resp, "Dataset exists", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJsonMap()["exists"], true)
		})

		a.Alternative("Create duplicated dataset", func(a *biff.A) {
			resp := apiRequest("POST", "/datasets").
				WithBodyJson(JSON{
					"name": "tank/data",
				}).Do()
			Save(resp, "Create dataset - already exists", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			errBody := resp.BodyJsonMap()["error"].(JSON)
			biff.AssertEqual(errBody["kind"], "FilesystemExists")
		})

		a.Alternative("Create dataset without parent", func(a *biff.A) {
			resp := apiRequest("POST", "/datasets").
				WithBodyJson(JSON{
					"name": "tank/a/b",
				}).Do()
			Save(resp, "Create dataset - parent not found", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			errBody := resp.BodyJsonMap()["error"].(JSON)
			biff.AssertEqual(errBody["kind"], "ParentNotFound")
		})

		a.Alternative("Write and read data", func(a *biff.A) {
			resp := apiRequest("POST", "/datasets:writeData").
				WithBodyJson(JSON{
					"dataset": "tank/data",
					"key":     "greeting",
					"value":   value,
				}).Do()
			Save(resp, "Write data", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("POST", "/datasets:readData").
				WithBodyJson(JSON{
					"dataset": "tank/data",
					"key":     "greeting",
				}).Do()
			Save(resp, "Read data", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJsonMap()["value"], value)
		})

		a.Alternative("Destroy dataset", func(a *biff.A) {
			resp := apiRequest("POST", "/datasets:destroyDataset").
				WithBodyJson(JSON{
					"name": "tank/data",
				}).Do()
			Save(resp, "Destroy dataset", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = apiRequest("POST", "/datasets:exists").
				WithBodyJson(JSON{
					"name": "tank/data",
				}).Do()
			biff.AssertEqual(resp.BodyJsonMap()["exists"], false)
		})

		a.Alternative("Create snapshot", func(a *biff.A) {

			apiRequest("POST", "/datasets:writeData").
				WithBodyJson(JSON{
					"dataset": "tank/data",
					"key":     "greeting",
					"value":   value,
				}).Do()

			resp := apiRequest("POST", "/snapshots").
				WithBodyJson(JSON{
					"snapshots": []string{"tank/data@monday"},
				}).Do()
			Save(resp, "Create snapshot", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)

			a.Alternative("List snapshots", func(a *biff.A) {
				resp := apiRequest("POST", "/snapshots:listSnapshots").
					WithBodyJson(JSON{
						"dataset": "tank/data",
					}).Do()
				Save(resp, "List snapshots", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				list := resp.BodyJson().([]interface{})
				biff.AssertEqual(len(list), 1)
				biff.AssertEqual(list[0].(JSON)["name"], "tank/data@monday")
			})

			a.Alternative("Snapshot again with the same name", func(a *biff.A) {
				resp := apiRequest("POST", "/snapshots").
					WithBodyJson(JSON{
						"snapshots": []string{"tank/data@monday"},
					}).Do()
				Save(resp, "Create snapshot - already exists", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusConflict)
				errBody := resp.BodyJsonMap()["error"].(JSON)
				biff.AssertEqual(errBody["kind"], "SnapshotFailure")
				items := errBody["errors"].([]interface{})
				biff.AssertEqual(items[0].(JSON)["kind"], "SnapshotExists")
			})

			a.Alternative("Rollback discards later writes", func(a *biff.A) {
				apiRequest("POST", "/datasets:writeData").
					WithBodyJson(JSON{
						"dataset": "tank/data",
						"key":     "greeting",
						"value":   base64.StdEncoding.EncodeToString([]byte("changed")),
					}).Do()

				resp := apiRequest("POST", "/datasets:rollback").
					WithBodyJson(JSON{
						"name": "tank/data",
					}).Do()
				Save(resp, "Rollback dataset", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqual(resp.BodyJsonMap()["target"], "tank/data@monday")

				resp = apiRequest("POST", "/datasets:readData").
					WithBodyJson(JSON{
						"dataset": "tank/data",
						"key":     "greeting",
					}).Do()
				biff.AssertEqual(resp.BodyJsonMap()["value"], value)
			})

			a.Alternative("Clone", func(a *biff.A) {
				resp := apiRequest("POST", "/datasets:clone").
					WithBodyJson(JSON{
						"name":   "tank/copy",
						"origin": "tank/data@monday",
					}).Do()
				Save(resp, "Clone snapshot", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqual(resp.BodyJsonMap()["origin"], "tank/data@monday")

				a.Alternative("Destroy cloned origin", func(a *biff.A) {
					resp := apiRequest("POST", "/snapshots:destroySnapshots").
						WithBodyJson(JSON{
							"snapshots": []string{"tank/data@monday"},
						}).Do()
					Save(resp, "Destroy snapshot - is cloned", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusConflict)
					errBody := resp.BodyJsonMap()["error"].(JSON)
					biff.AssertEqual(errBody["kind"], "SnapshotDestructionFailure")
					items := errBody["errors"].([]interface{})
					biff.AssertEqual(items[0].(JSON)["kind"], "SnapshotIsCloned")
				})

				a.Alternative("Clone reads origin data", func(a *biff.A) {
					resp := apiRequest("POST", "/datasets:readData").
						WithBodyJson(JSON{
							"dataset": "tank/copy",
							"key":     "greeting",
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqual(resp.BodyJsonMap()["value"], value)
				})
			})

			a.Alternative("Destroy snapshot", func(a *biff.A) {
				resp := apiRequest("POST", "/snapshots:destroySnapshots").
					WithBodyJson(JSON{
						"snapshots": []string{"tank/data@monday"},
					}).Do()
				Save(resp, "Destroy snapshot", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)

				resp = apiRequest("POST", "/snapshots:listSnapshots").
					WithBodyJson(JSON{
						"dataset": "tank/data",
					}).Do()
				biff.AssertEqual(len(resp.BodyJson().([]interface{})), 0)
			})

			a.Alternative("Bookmark", func(a *biff.A) {
				resp := apiRequest("POST", "/bookmarks").
					WithBodyJson(JSON{
						"bookmarks": JSON{
							"tank/data#monday": "tank/data@monday",
						},
					}).Do()
				Save(resp, "Create bookmark", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)

				a.Alternative("Get bookmarks", func(a *biff.A) {
					resp := apiRequest("POST", "/bookmarks:getBookmarks").
						WithBodyJson(JSON{
							"dataset": "tank/data",
							"props":   []string{"guid", "createtxg"},
						}).Do()
					Save(resp, "Get bookmarks", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					marks := resp.BodyJsonMap()
					mark := marks["monday"].(JSON)
					biff.AssertNotNil(mark["guid"])
					biff.AssertNotNil(mark["createtxg"])
				})

				a.Alternative("Bookmark survives its snapshot", func(a *biff.A) {
					resp := apiRequest("POST", "/snapshots:destroySnapshots").
						WithBodyJson(JSON{
							"snapshots": []string{"tank/data@monday"},
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)

					resp = apiRequest("POST", "/bookmarks:getBookmarks").
						WithBodyJson(JSON{
							"dataset": "tank/data",
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertNotNil(resp.BodyJsonMap()["monday"])
				})

				a.Alternative("Destroy bookmark", func(a *biff.A) {
					resp := apiRequest("POST", "/bookmarks:destroyBookmarks").
						WithBodyJson(JSON{
							"bookmarks": []string{"tank/data#monday"},
						}).Do()
					Save(resp, "Destroy bookmark", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
				})
			})

			a.Alternative("Hold", func(a *biff.A) {
				resp := apiRequest("POST", "/holds").
					WithBodyJson(JSON{
						"holds": JSON{
							"tank/data@monday": "keep",
						},
					}).Do()
				Save(resp, "Create hold", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJsonMap()["missing"], []interface{}{})

				a.Alternative("Get holds", func(a *biff.A) {
					resp := apiRequest("POST", "/holds:getHolds").
						WithBodyJson(JSON{
							"snapshot": "tank/data@monday",
						}).Do()
					Save(resp, "Get holds", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertNotNil(resp.BodyJsonMap()["keep"])
				})

				a.Alternative("Destroy held snapshot", func(a *biff.A) {
					resp := apiRequest("POST", "/snapshots:destroySnapshots").
						WithBodyJson(JSON{
							"snapshots": []string{"tank/data@monday"},
						}).Do()
					Save(resp, "Destroy snapshot - is held", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusConflict)
					errBody := resp.BodyJsonMap()["error"].(JSON)
					items := errBody["errors"].([]interface{})
					biff.AssertEqual(items[0].(JSON)["kind"], "SnapshotIsHeld")
				})

				a.Alternative("Release hold", func(a *biff.A) {
					resp := apiRequest("POST", "/holds:releaseHolds").
						WithBodyJson(JSON{
							"releases": JSON{
								"tank/data@monday": []string{"keep"},
							},
						}).Do()
					Save(resp, "Release hold", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJsonMap()["missing"], []interface{}{})

					resp = apiRequest("POST", "/snapshots:destroySnapshots").
						WithBodyJson(JSON{
							"snapshots": []string{"tank/data@monday"},
						}).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusOK)
				})
			})

			a.Alternative("Cleanup handle", func(a *biff.A) {
				resp := apiRequest("POST", "/cleanups").Do()
				Save(resp, "Open cleanup handle", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				id := resp.BodyJsonMap()["id"].(string)

				resp = apiRequest("POST", "/holds").
					WithBodyJson(JSON{
						"holds": JSON{
							"tank/data@monday": "temporary",
						},
						"cleanup": id,
					}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusCreated)

				a.Alternative("Close releases holds", func(a *biff.A) {
					resp := apiRequest("POST", "/cleanups:closeCleanup").
						WithBodyJson(JSON{
							"id": id,
						}).Do()
					Save(resp, "Close cleanup handle", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)

					resp = apiRequest("POST", "/holds:getHolds").
						WithBodyJson(JSON{
							"snapshot": "tank/data@monday",
						}).Do()
					biff.AssertEqualJson(resp.BodyJsonMap(), JSON{})

					a.Alternative("Close twice", func(a *biff.A) {
						resp := apiRequest("POST", "/cleanups:closeCleanup").
							WithBodyJson(JSON{
								"id": id,
							}).Do()
						Save(resp, "Close cleanup handle - already closed", ``)

						biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
						errBody := resp.BodyJsonMap()["error"].(JSON)
						biff.AssertEqual(errBody["kind"], "BadHoldCleanupHandle")
					})
				})
			})

			a.Alternative("Send and receive", func(a *biff.A) {
				resp := apiRequest("POST", "/streams:send").
					WithBodyJson(JSON{
						"to": "tank/data@monday",
					}).Do()
				Save(resp, "Send stream", `The body is the binary stream.`)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				streamBody := resp.BodyString()

				a.Alternative("Send space matches the stream size", func(a *biff.A) {
					resp := apiRequest("POST", "/snapshots:sendSpace").
						WithBodyJson(JSON{
							"to": "tank/data@monday",
						}).Do()
					Save(resp, "Send space", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					space, _ := resp.BodyJsonMap()["space"].(json.Number).Int64()
					biff.AssertEqual(int(space), len(streamBody))
				})

				a.Alternative("Receive into another pool", func(a *biff.A) {
					resp := apiRequest("POST", "/streams:receive").
						WithQuery("target", "misc/backup@monday").
						WithBodyString(streamBody).Do()
					Save(resp, "Receive stream", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusCreated)

					resp = apiRequest("POST", "/datasets:readData").
						WithBodyJson(JSON{
							"dataset": "misc/backup",
							"key":     "greeting",
						}).Do()
					biff.AssertEqual(resp.BodyJsonMap()["value"], value)

					a.Alternative("Incremental follow up", func(a *biff.A) {
						apiRequest("POST", "/datasets:writeData").
							WithBodyJson(JSON{
								"dataset": "tank/data",
								"key":     "extra",
								"value":   value,
							}).Do()
						apiRequest("POST", "/snapshots").
							WithBodyJson(JSON{
								"snapshots": []string{"tank/data@tuesday"},
							}).Do()

						resp := apiRequest("POST", "/streams:send").
							WithBodyJson(JSON{
								"to":   "tank/data@tuesday",
								"from": "tank/data@monday",
							}).Do()
						biff.AssertEqual(resp.StatusCode, http.StatusOK)

						resp = apiRequest("POST", "/streams:receive").
							WithQuery("target", "misc/backup@tuesday").
							WithBodyString(resp.BodyString()).Do()
						Save(resp, "Receive incremental stream", ``)

						biff.AssertEqual(resp.StatusCode, http.StatusCreated)

						resp = apiRequest("POST", "/datasets:readData").
							WithBodyJson(JSON{
								"dataset": "misc/backup",
								"key":     "extra",
							}).Do()
						biff.AssertEqual(resp.BodyJsonMap()["value"], value)
					})
				})

				a.Alternative("Receive garbage", func(a *biff.A) {
					resp := apiRequest("POST", "/streams:receive").
						WithQuery("target", "misc/backup@monday").
						WithBodyString("this is not a stream").Do()
					Save(resp, "Receive stream - bad stream", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
					errBody := resp.BodyJsonMap()["error"].(JSON)
					biff.AssertEqual(errBody["kind"], "BadStream")
				})
			})
		})

		a.Alternative("Create snapshot with invalid name", func(a *biff.A) {
			resp := apiRequest("POST", "/snapshots").
				WithBodyJson(JSON{
					"snapshots": []string{"tank/data@bad$name"},
				}).Do()
			Save(resp, "Create snapshot - invalid name", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})
	})

	a.Alternative("Create dataset with invalid name", func(a *biff.A) {
		resp := apiRequest("POST", "/datasets").
			WithBodyJson(JSON{
				"name": "tank/bad$name",
			}).Do()
		Save(resp, "Create dataset - invalid name", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		errBody := resp.BodyJsonMap()["error"].(JSON)
		biff.AssertEqual(errBody["kind"], "NameInvalid")
	})

	a.Alternative("Create dataset on unknown pool", func(a *biff.A) {
		resp := apiRequest("POST", "/datasets").
			WithBodyJson(JSON{
				"name": "nope/data",
			}).Do()
		Save(resp, "Create dataset - unknown pool", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		errBody := resp.BodyJsonMap()["error"].(JSON)
		biff.AssertEqual(errBody["kind"], "ParentNotFound")
	})
}
