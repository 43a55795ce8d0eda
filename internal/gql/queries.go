package gql

// GraphQL documents for the consumed operation surface. Report reads use the
// hand-written minimal variants rather than the generated greedy ones: the
// greedy variants resolve deeply nested relationships to null and fail
// deserialization.

const queryFetchTournamentData = `
mutation FetchTournamentData($url: String!, $forceRefresh: Boolean, $scraperApiKey: String, $entityId: ID) {
  fetchTournamentData(url: $url, forceRefresh: $forceRefresh, scraperApiKey: $scraperApiKey, entityId: $entityId) {
    game {
      tournamentId name gameType gameVariant gameStatus registrationStatus
      gameStartDateTime gameEndDateTime
      buyIn rake guaranteeAmount hasGuarantee startingStack
      totalEntries totalRebuys totalAddons totalUniquePlayers
      prizePoolPaid prizePoolCalculated
      levels { levelNumber durationMinutes smallBlind bigBlind ante }
      results { rank name winnings points isQualification }
      entries { name rebuys addons bustedAt }
      seating { tableNumber seatNumber name stackSize }
      rawHtml foundKeys
      venueMatch { venueId venueName confidence }
      existingGameId doNotScrape
    }
    s3Key wasForced source fromCache error
  }
}`

const queryReScrapeFromCache = `
mutation ReScrapeFromCache($input: ReScrapeFromCacheInput!) {
  reScrapeFromCache(input: $input) {
    game {
      tournamentId name gameType gameVariant gameStatus registrationStatus
      gameStartDateTime gameEndDateTime
      buyIn rake guaranteeAmount hasGuarantee startingStack
      totalEntries totalRebuys totalAddons totalUniquePlayers
      prizePoolPaid prizePoolCalculated
      levels { levelNumber durationMinutes smallBlind bigBlind ante }
      results { rank name winnings points isQualification }
      entries { name rebuys addons bustedAt }
      seating { tableNumber seatNumber name stackSize }
      rawHtml foundKeys
      venueMatch { venueId venueName confidence }
      existingGameId doNotScrape
    }
    s3Key wasForced source fromCache error
  }
}`

const querySaveGame = `
mutation SaveGame($input: SaveGameInput!) {
  saveGame(input: $input) {
    success gameId action message warnings
    playerProcessingQueued playerProcessingReason
    venueAssignment { venueId venueName status confidence }
    fieldsUpdated
  }
}`

const queryScrapeURLByURL = `
query ScrapeURLByURL($url: String!) {
  scrapeURLByURL(url: $url) {
    id url lastStatus lastScrapedAt latestS3Key doNotScrape
  }
}`

const querySearchScrapeURLs = `
query SearchScrapeURLs($term: String!, $limit: Int) {
  searchScrapeURLs(term: $term, limit: $limit) {
    id url lastStatus lastScrapedAt latestS3Key doNotScrape
  }
}`

const queryScraperJobMinimal = `
query GetScraperJobMinimal($id: ID!) {
  getScraperJobMinimal(id: $id) {
    id jobId status startTime endTime
    startId endId currentId durationSeconds
    totalUrlsProcessed newGamesScraped gamesUpdated gamesSkipped errors blanks
    successRate stopReason lastErrorMessage
  }
}`

const queryScraperJobsReportMinimal = `
query GetScraperJobsReportMinimal($limit: Int) {
  getScraperJobsReportMinimal(limit: $limit) {
    id jobId status startTime endTime
    startId endId currentId durationSeconds
    totalUrlsProcessed newGamesScraped gamesUpdated gamesSkipped errors blanks
    successRate stopReason lastErrorMessage
  }
}`

const queryScraperMetrics = `
query GetScraperMetrics {
  getScraperMetrics {
    totalUrls activeUrls doNotScrapeUrls jobsLast24h errorsLast24h
  }
}`

const queryUpdateCandidateURLs = `
query GetUpdateCandidateURLs($limit: Int) {
  getUpdateCandidateURLs(limit: $limit) {
    url gameStatus lastSeenAt
  }
}`

const queryStartScraperJob = `
mutation StartScraperJob($startId: Int!, $endId: Int!, $entityId: ID) {
  startScraperJob(startId: $startId, endId: $endId, entityId: $entityId) {
    id jobId status
  }
}`

const queryCancelScraperJob = `
mutation CancelScraperJob($id: ID!) {
  cancelScraperJob(id: $id) {
    id status
  }
}`

const queryModifyScrapeURLStatus = `
mutation ModifyScrapeURLStatus($url: String!, $doNotScrape: Boolean!) {
  modifyScrapeURLStatus(url: $url, doNotScrape: $doNotScrape) {
    id url doNotScrape
  }
}`

const queryBulkModifyScrapeURLs = `
mutation BulkModifyScrapeURLs($urls: [String!]!, $doNotScrape: Boolean!) {
  bulkModifyScrapeURLs(urls: $urls, doNotScrape: $doNotScrape) {
    modified
  }
}`

const queryReassignGameVenue = `
mutation ReassignGameVenue($gameId: ID!, $venueId: ID!) {
  reassignGameVenue(gameId: $gameId, venueId: $venueId) {
    taskId status processed total message
  }
}`

const queryBulkReassignGameVenues = `
mutation BulkReassignGameVenues($gameIds: [ID!]!, $venueId: ID!) {
  bulkReassignGameVenues(gameIds: $gameIds, venueId: $venueId) {
    taskId status processed total message
  }
}`

const queryReassignmentStatus = `
query GetReassignmentStatus($taskId: ID!) {
  getReassignmentStatus(taskId: $taskId) {
    taskId status processed total message
  }
}`

const queryVenueClones = `
query GetVenueClones($entityId: ID!) {
  getVenueClones(entityId: $entityId) {
    venueId venueName cloneOf score
  }
}`

const queryFindVenueForEntity = `
query FindVenueForEntity($entityId: ID!, $name: String!) {
  findVenueForEntity(entityId: $entityId, name: $name) {
    venueId venueName confidence
  }
}`

const subscriptionJobUpdate = `
subscription OnScraperJobUpdate($jobId: ID) {
  onScraperJobUpdate(jobId: $jobId) {
    id jobId status startTime endTime
    startId endId currentId durationSeconds
    totalUrlsProcessed newGamesScraped gamesUpdated gamesSkipped errors blanks
    successRate stopReason lastErrorMessage
  }
}`
