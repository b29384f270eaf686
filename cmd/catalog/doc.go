// Command catalog runs the product catalogue service and its maintenance
// tasks:
//
//	catalog serve             # HTTP API, WebSocket feed, GraphQL and gRPC health
//	catalog route:list        # list API routes
//	catalog migrate           # SQL tables or Mongo indexes, per PRODUCT_STORE
//	catalog migrate:rollback
//	catalog migrate:status
//	catalog seed              # demo products
//	catalog stats             # print the statistics snapshot
//	catalog cache:clear       # drop the cached statistics
//	catalog export --disk s3  # write catalogue + statistics JSON to a disk
//	catalog token:issue --role admin
//
// Configuration comes from config/app.json, .env and the environment.
package main
